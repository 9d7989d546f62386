package routes

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"
	"storefront/registration"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserRequest struct {
	Name     string `json:"name" validate:"notblank,min=3,max=255"`
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,min=8,max=255"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,notblank,min=3,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"notblank"`
	NewPassword string `json:"newPassword" validate:"notblank,min=8,max=255"`
}

type AddressRequest struct {
	Street string `json:"street" validate:"notblank,max=255"`
	City   string `json:"city" validate:"notblank,max=255"`
	Zip    string `json:"zip" validate:"notblank,max=10"`
}

type ProfileRequest struct {
	Bio           string `json:"bio" validate:"max=1000"`
	PhoneNumber   string `json:"phoneNumber" validate:"max=32"`
	DateOfBirth   string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	LoyaltyPoints int    `json:"loyaltyPoints" validate:"min=0"`
}

type AddTagsRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,notblank,max=100"`
}

type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *RegisterUserRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

func (r *UpdateUserRequest) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Email != nil {
		email := normalizeEmail(*r.Email)
		r.Email = &email
	}
}

// emailTaken reports whether a user other than self already uses email.
func (h *Handler) emailTaken(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := h.Users.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return apperrors.Conflict("User with this email already exists")
	}
	return nil
}

// staleClaimAge is how old an email claim without a user row must be before
// it is treated as left over from a registration that never finished.
const staleClaimAge = time.Minute

// reserveEmail claims r.Email. A claim whose user was never persisted is
// released and taken over once it is older than staleClaimAge.
func (h *Handler) reserveEmail(ctx context.Context, r registration.Registrant) error {
	err := h.Registration.Reserve(ctx, r)
	if !errors.Is(err, apperrors.ErrConflict) {
		return err
	}

	claim, lookupErr := h.Registration.Lookup(ctx, r.Email)
	if errors.Is(lookupErr, apperrors.ErrNotFound) {
		// expired or released in the meantime
		return h.Registration.Reserve(ctx, r)
	}
	if lookupErr != nil {
		return lookupErr
	}
	if claim.UserID == r.UserID || time.Since(claim.RegisteredAt) < staleClaimAge {
		return err
	}
	if _, findErr := h.Users.FindByID(ctx, claim.UserID); !errors.Is(findErr, apperrors.ErrNotFound) {
		if findErr != nil {
			return findErr
		}
		return err
	}

	h.Log.Info("Reclaiming stale registration",
		zap.String("email", r.Email),
		zap.String("stale_user_id", claim.UserID.String()),
	)
	if err := h.Registration.Release(ctx, r.Email); err != nil {
		return err
	}
	return h.Registration.Reserve(ctx, r)
}

func (h *Handler) loadUser(c *fiber.Ctx) (*models.User, error) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Users.FindByID(c.UserContext(), id)
}

// registerUser - POST /users
func (h *Handler) registerUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	email := normalizeEmail(req.Email)
	if err := h.emailTaken(ctx, email, uuid.Nil); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
	}

	registrant := registration.Registrant{UserID: user.ID, Name: user.Name, Email: user.Email, RegisteredAt: time.Now().UTC()}
	if h.Registration != nil {
		if err := h.reserveEmail(ctx, registrant); err != nil {
			return err
		}
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if h.Registration != nil {
			if relErr := h.Registration.Release(ctx, email); relErr != nil {
				h.Log.Warn("Failed to release registration", zap.String("email", email), zap.Error(relErr))
			}
		}
		return err
	}

	if h.Registration != nil {
		h.Registration.Welcome(ctx, registrant)
	}

	c.Location("/api/users/" + user.ID.String())
	return c.Status(fiber.StatusCreated).JSON(toUserDto(user))
}

// getAllUsers - GET /users
func (h *Handler) getAllUsers(c *fiber.Ctx) error {
	page, err := parsePageQuery(c, pagination.UserColumns, "name")
	if err != nil {
		return err
	}
	result, err := h.Users.FindPage(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(pagination.Map(result, toUserDto))
}

// getUser - GET /users/:id
func (h *Handler) getUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	return c.JSON(toUserDetailDto(user))
}

// updateUser - PATCH /users/:id
func (h *Handler) updateUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	oldEmail := user.Email
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && normalizeEmail(*req.Email) != oldEmail {
		user.Email = normalizeEmail(*req.Email)
		if err := h.emailTaken(ctx, user.Email, user.ID); err != nil {
			return err
		}
		if h.Registration != nil {
			if err := h.reserveEmail(ctx, registration.Registrant{UserID: user.ID, Name: user.Name, Email: user.Email}); err != nil {
				return err
			}
		}
	}

	if err := h.Users.Save(ctx, user); err != nil {
		if h.Registration != nil && user.Email != oldEmail {
			_ = h.Registration.Release(ctx, user.Email)
		}
		return err
	}
	if h.Registration != nil && user.Email != oldEmail {
		if err := h.Registration.Release(ctx, oldEmail); err != nil {
			h.Log.Warn("Failed to release registration", zap.String("email", oldEmail), zap.Error(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// deleteUser - DELETE /users/:id
func (h *Handler) deleteUser(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := h.Users.Delete(ctx, user.ID); err != nil {
		return err
	}
	if h.Registration != nil {
		if err := h.Registration.Release(ctx, user.Email); err != nil {
			h.Log.Warn("Failed to release registration", zap.String("email", user.Email), zap.Error(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// changePassword - PATCH /users/:id/change-password
func (h *Handler) changePassword(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperrors.Field("oldPassword", "Old password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)

	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// addAddress - POST /users/:id/addresses
func (h *Handler) addAddress(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req AddressRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	address := &models.Address{
		Street: strings.TrimSpace(req.Street),
		City:   strings.TrimSpace(req.City),
		Zip:    strings.TrimSpace(req.Zip),
	}
	user.AddAddress(address)
	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toAddressDto(address))
}

// removeAddress - DELETE /users/:id/addresses/:addressId
func (h *Handler) removeAddress(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	addressID, err := parseUUIDParam(c, "addressId")
	if err != nil {
		return err
	}

	address := user.AddressByID(addressID)
	if address == nil {
		return apperrors.NotFound("Address")
	}
	user.RemoveAddress(address)
	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// setProfile - PUT /users/:id/profile
// Any existing profile is replaced.
func (h *Handler) setProfile(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req ProfileRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	profile := &models.Profile{
		Bio:           req.Bio,
		PhoneNumber:   req.PhoneNumber,
		LoyaltyPoints: req.LoyaltyPoints,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return apperrors.Field("dateOfBirth", "DateOfBirth must match the format "+dateLayout)
		}
		profile.DateOfBirth = &dob
	}

	user.SetProfile(profile)
	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.JSON(toProfileDto(profile))
}

// removeProfile - DELETE /users/:id/profile
func (h *Handler) removeProfile(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	if user.Profile == nil {
		return apperrors.NotFound("Profile")
	}

	user.RemoveProfile()
	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// addTags - POST /users/:id/tags
func (h *Handler) addTags(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req AddTagsRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	tags := make([]*models.Tag, 0, len(req.Names))
	for _, name := range req.Names {
		tag, err := h.Tags.FindOrCreateByName(ctx, name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	user.AddTags(tags...)
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return c.JSON(toTagDtos(user.Tags))
}

// removeTag - DELETE /users/:id/tags/:name
// Every tag with that name is removed.
func (h *Handler) removeTag(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return apperrors.Field("name", "Name is invalid")
	}

	if removed := user.RemoveTag(name); removed > 0 {
		if err := h.Users.Save(c.UserContext(), user); err != nil {
			return err
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// getWishlist - GET /users/:id/wishlist
func (h *Handler) getWishlist(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	return c.JSON(toProductDtos(user.FavoriteProducts))
}

// addToWishlist - POST /users/:id/wishlist
func (h *Handler) addToWishlist(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	var req WishlistRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	product, err := h.Products.FindByID(ctx, uuid.MustParse(req.ProductID))
	if err != nil {
		return err
	}
	if user.AddFavorite(product) {
		if err := h.Users.Save(ctx, user); err != nil {
			return err
		}
	}
	return c.Status(fiber.StatusCreated).JSON(toProductDto(product))
}

// removeFromWishlist - DELETE /users/:id/wishlist/:productId
func (h *Handler) removeFromWishlist(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		return err
	}

	if !user.RemoveFavorite(productID) {
		return apperrors.NotFound("Wishlist item")
	}
	if err := h.Users.Save(c.UserContext(), user); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// getAllTags - GET /tags
func (h *Handler) getAllTags(c *fiber.Ctx) error {
	tags, err := h.Tags.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toTagDtos(tags))
}
