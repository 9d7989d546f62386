package routes

import (
	"storefront/logger"
	"storefront/payment"
	"storefront/realtime"
	"storefront/registration"
	"storefront/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Carts        repository.CartRepository
	Products     repository.ProductRepository
	Categories   repository.CategoryRepository
	Users        repository.UserRepository
	Tags         repository.TagRepository
	Orders       repository.OrderRepository
	Payments     payment.Gateway
	Registration *registration.Service
	Events       realtime.Publisher
	Log          *zap.Logger
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost  int
	CORSOrigins string
}

type Handler struct {
	Deps
	validate *validator.Validate
}

func NewHandler(deps Deps) *Handler {
	if deps.Events == nil {
		deps.Events = realtime.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	return &Handler{Deps: deps, validate: newValidator()}
}

// New builds the API app: error handling, middleware and every route.
func New(deps Deps) *fiber.App {
	h := NewHandler(deps)

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(h.Log),
	})

	// recover sits inside the request logger so panics are logged as 500s
	app.Use(logger.RequestLogger(h.Log.Named("http")))
	app.Use(recover.New())
	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	SetupRoutes(app, h)
	return app
}

func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Cart routes
	carts := api.Group("/carts")
	carts.Post("/", h.createCart)
	carts.Get("/:cartId", h.getCart)
	carts.Delete("/:cartId", h.deleteCart)
	carts.Post("/:cartId/items", h.addCartItem)
	carts.Put("/:cartId/items/:productId", h.updateCartItem)
	carts.Delete("/:cartId/items/:productId", h.removeCartItem)
	carts.Delete("/:cartId/items", h.clearCart)
	carts.Post("/:cartId/checkout", h.checkout)

	// Order routes
	api.Get("/orders/:id", h.getOrder)

	// Product routes
	products := api.Group("/products")
	products.Get("/search", h.searchProducts)
	products.Post("/", h.createProduct)
	products.Get("/", h.getAllProducts)
	products.Get("/:id", h.getProduct)
	products.Patch("/:id", h.updateProduct)
	products.Delete("/:id", h.deleteProduct)

	// Category routes
	categories := api.Group("/categories")
	categories.Post("/", h.createCategory)
	categories.Get("/", h.getAllCategories)
	categories.Get("/:id", h.getCategory)
	categories.Patch("/:id", h.updateCategory)
	categories.Delete("/:id", h.deleteCategory)

	// User routes
	users := api.Group("/users")
	users.Post("/", h.registerUser)
	users.Get("/", h.getAllUsers)
	users.Get("/:id", h.getUser)
	users.Patch("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)
	users.Patch("/:id/change-password", h.changePassword)

	users.Post("/:id/addresses", h.addAddress)
	users.Delete("/:id/addresses/:addressId", h.removeAddress)
	users.Put("/:id/profile", h.setProfile)
	users.Delete("/:id/profile", h.removeProfile)
	users.Post("/:id/tags", h.addTags)
	users.Delete("/:id/tags/:name", h.removeTag)
	users.Get("/:id/wishlist", h.getWishlist)
	users.Post("/:id/wishlist", h.addToWishlist)
	users.Delete("/:id/wishlist/:productId", h.removeFromWishlist)
	users.Get("/:id/orders", h.getUserOrders)

	api.Get("/tags", h.getAllTags)
}
