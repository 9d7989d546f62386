package repository_test

import (
	"testing"

	"storefront/apperrors"
	"storefront/models"
	"storefront/pagination"
	"storefront/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserGraph(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{Name: "Rayhan", Email: "Rayhan@Example.com", Password: "hash"}
	user.AddAddress(&models.Address{Street: "1 Main St", City: "Springfield", Zip: "12345"})
	user.AddAddress(&models.Address{Street: "2 Side St", City: "Shelbyville", Zip: "54321"})
	user.SetProfile(&models.Profile{Bio: "I'm a developer", PhoneNumber: "555-0100", LoyaltyPoints: 1000})
	user.AddTags(&models.Tag{Name: "tag1"}, &models.Tag{Name: "tag2"})
	return user
}

func TestUserCreateAndFind(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())
	favorite := seedProduct(t, database, "lamp", "25.00")

	user := newUserGraph(t)
	user.AddFavorite(favorite)
	require.NoError(t, repo.Create(ctx, user))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	require.Len(t, loaded.Addresses, 2)
	assert.Equal(t, "1 Main St", loaded.Addresses[0].Street)
	assert.Same(t, loaded, loaded.Addresses[0].User())
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, 1000, loaded.Profile.LoyaltyPoints)
	assert.Same(t, loaded, loaded.Profile.User())
	assert.Len(t, loaded.Tags, 2)
	assert.Equal(t, []*models.User{loaded}, loaded.Tags[0].Users())
	require.Len(t, loaded.FavoriteProducts, 1)
	assert.Equal(t, favorite.ID, loaded.FavoriteProducts[0].ID)

	byEmail, err := repo.FindByEmail(ctx, "rayhan@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserSaveRemovesOrphansAndLinks(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())
	favorite := seedProduct(t, database, "lamp", "25.00")

	user := newUserGraph(t)
	user.AddFavorite(favorite)
	require.NoError(t, repo.Create(ctx, user))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	loaded.RemoveAddress(loaded.Addresses[0])
	loaded.RemoveProfile()
	assert.Equal(t, 1, loaded.RemoveTag("tag1"))
	loaded.RemoveFavorite(favorite.ID)
	require.NoError(t, repo.Save(ctx, loaded))

	assert.EqualValues(t, 1, count(t, database, &models.Address{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 0, count(t, database, &models.Profile{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 1, count(t, database, &models.UserTag{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 0, count(t, database, &models.Wishlist{}, "user_id = ?", user.ID))
	// tags are shared and outlive the link
	assert.EqualValues(t, 1, count(t, database, &models.Tag{}, "name = ?", "tag1"))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Addresses, 1)
	assert.Equal(t, "2 Side St", reloaded.Addresses[0].Street)
	assert.Nil(t, reloaded.Profile)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, "tag2", reloaded.Tags[0].Name)
}

func TestUserSaveReplacesProfile(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())

	user := newUserGraph(t)
	require.NoError(t, repo.Create(ctx, user))

	user.SetProfile(&models.Profile{Bio: "replacement"})
	require.NoError(t, repo.Save(ctx, user))

	assert.EqualValues(t, 1, count(t, database, &models.Profile{}, "user_id = ?", user.ID))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "replacement", reloaded.Profile.Bio)
}

func TestUserDeleteCascades(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())
	favorite := seedProduct(t, database, "lamp", "25.00")

	user := newUserGraph(t)
	user.AddFavorite(favorite)
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))

	assert.EqualValues(t, 0, count(t, database, &models.Address{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 0, count(t, database, &models.Profile{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 0, count(t, database, &models.UserTag{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 0, count(t, database, &models.Wishlist{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 2, count(t, database, &models.Tag{}, "1 = 1"))
	assert.EqualValues(t, 1, count(t, database, &models.Product{}, "id = ?", favorite.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), apperrors.ErrNotFound)
}

func TestUserFindPage(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Create(ctx, &models.User{Name: name, Email: name + "@example.com", Password: "x"}))
	}

	req, err := pagination.Normalize(pagination.Query{Limit: intPtr(2), SortBy: "name", Sort: pagination.ASC}, pagination.UserColumns)
	require.NoError(t, err)

	page, err := repo.FindPage(ctx, req)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice", page.Items[0].Name)
	assert.Equal(t, "bob", page.Items[1].Name)
}

func TestUserFindByEmailNotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := repository.NewGormUserRepository(database, zap.NewNop())

	_, err := repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func intPtr(v int) *int { return &v }
