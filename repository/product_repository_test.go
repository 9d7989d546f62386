package repository_test

import (
	"context"
	"regexp"
	"testing"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"
	"storefront/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestProductFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDelete_RemovesReferencesInOneTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB, zap.NewNop())
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "wishlists" WHERE product_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items" WHERE product_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDelete_MissingRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB, zap.NewNop())
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "wishlists"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductFindPageFiltersByCategory(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormProductRepository(database, zap.NewNop())
	tools := &models.Category{Name: "tools"}
	require.NoError(t, database.Create(tools).Error)

	hammer := seedProduct(t, database, "hammer", "19.99")
	saw := seedProduct(t, database, "saw", "24.50")
	seedProduct(t, database, "lamp", "9.00")
	for _, p := range []*models.Product{hammer, saw} {
		p.AssignCategory(tools)
		require.NoError(t, repo.Save(ctx, p))
	}

	req, err := pagination.Normalize(pagination.Query{SortBy: "price"}, pagination.ProductColumns)
	require.NoError(t, err)

	page, err := repo.FindPage(ctx, repository.ProductFilter{CategoryID: &tools.ID, Page: req})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "saw", page.Items[0].Name)
	assert.Equal(t, "hammer", page.Items[1].Name)
	require.NotNil(t, page.Items[0].Category)
	assert.Equal(t, "tools", page.Items[0].Category.Name)

	all, err := repo.FindPage(ctx, repository.ProductFilter{Page: req})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
}

func TestProductDeleteDropsCartLinesAndWishlists(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormProductRepository(database, zap.NewNop())
	carts := repository.NewGormCartRepository(database, zap.NewNop())
	users := repository.NewGormUserRepository(database, zap.NewNop())
	p := seedProduct(t, database, "p", "1.00")

	cart := &models.Cart{}
	require.NoError(t, cart.AddItem(models.NewCartItem(p, 2)))
	require.NoError(t, carts.Create(ctx, cart))
	user := &models.User{Name: "sam", Email: "sam@example.com", Password: "x"}
	user.AddFavorite(p)
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, p.ID))

	assert.EqualValues(t, 0, count(t, database, &models.CartItem{}, "product_id = ?", p.ID))
	assert.EqualValues(t, 0, count(t, database, &models.Wishlist{}, "product_id = ?", p.ID))
	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCategoryDeleteKeepsProducts(t *testing.T) {
	database := setupTestDB(t)
	categories := repository.NewGormCategoryRepository(database, zap.NewNop())
	products := repository.NewGormProductRepository(database, zap.NewNop())

	tools := &models.Category{Name: "tools"}
	require.NoError(t, categories.Create(ctx, tools))
	hammer := seedProduct(t, database, "hammer", "19.99")
	hammer.AssignCategory(tools)
	require.NoError(t, products.Save(ctx, hammer))

	loaded, err := categories.FindByID(ctx, tools.ID, true)
	require.NoError(t, err)
	require.Len(t, loaded.Products, 1)
	assert.Same(t, loaded, loaded.Products[0].Category)

	require.NoError(t, categories.Delete(ctx, tools.ID))

	kept, err := products.FindByID(ctx, hammer.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CategoryID)
	assert.Nil(t, kept.Category)
	assert.ErrorIs(t, categories.Delete(ctx, tools.ID), apperrors.ErrNotFound)
}

func TestCategoryFindPage(t *testing.T) {
	database := setupTestDB(t)
	categories := repository.NewGormCategoryRepository(database, zap.NewNop())
	for _, name := range []string{"b", "c", "a"} {
		require.NoError(t, categories.Create(ctx, &models.Category{Name: name}))
	}

	req, err := pagination.Normalize(pagination.Query{Page: intPtr(2), Limit: intPtr(2), SortBy: "name", Sort: pagination.ASC}, pagination.CategoryColumns)
	require.NoError(t, err)

	page, err := categories.FindPage(ctx, req)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].Name)
}

func TestTagFindOrCreateByName(t *testing.T) {
	database := setupTestDB(t)
	tags := repository.NewGormTagRepository(database, zap.NewNop())

	first, err := tags.FindOrCreateByName(ctx, " sale ")
	require.NoError(t, err)
	again, err := tags.FindOrCreateByName(ctx, "sale")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = tags.FindOrCreateByName(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	all, err := tags.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductSearch(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormProductRepository(database, zap.NewNop())
	garden := &models.Category{Name: "Garden"}
	require.NoError(t, database.Create(garden).Error)
	seedProduct(t, database, "Claw Hammer", "9.00")
	seedProduct(t, database, "Sledge hammer", "30.00")
	rake := seedProduct(t, database, "Rake", "4.00")
	rake.AssignCategory(garden)
	require.NoError(t, repo.Save(ctx, rake))

	byName, err := repo.Search(ctx, "HAMMER", 10)
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Claw Hammer", byName[0].Name)

	limited, err := repo.Search(ctx, "hammer", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byCategory, err := repo.Search(ctx, "gard", 10)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, rake.ID, byCategory[0].ID)
	require.NotNil(t, byCategory[0].Category)
	assert.Equal(t, "Garden", byCategory[0].Category.Name)

	none, err := repo.Search(ctx, "drill", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductSearchTreatsWildcardsLiterally(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormProductRepository(database, zap.NewNop())
	seedProduct(t, database, "100% cotton shirt", "20.00")
	seedProduct(t, database, "Hammer", "9.00")
	seedProduct(t, database, `C:\tools`, "1.00")

	percent, err := repo.Search(ctx, "%", 10)
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "100% cotton shirt", percent[0].Name)

	underscore, err := repo.Search(ctx, "_", 10)
	require.NoError(t, err)
	assert.Empty(t, underscore)

	backslash, err := repo.Search(ctx, `\`, 10)
	require.NoError(t, err)
	require.Len(t, backslash, 1)
	assert.Equal(t, `C:\tools`, backslash[0].Name)
}
