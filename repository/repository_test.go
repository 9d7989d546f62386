package repository_test

import (
	"context"
	"testing"

	"storefront/config"
	"storefront/db"
	"storefront/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.Open(&config.Config{DBDriver: "sqlite", DBDSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

func seedProduct(t *testing.T, database *gorm.DB, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, database.Create(p).Error)
	return p
}

func count(t *testing.T, database *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

var ctx = context.Background()
