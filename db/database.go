package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storefront/config"
	"storefront/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		if err := ensureSQLiteFile(cfg.DBDSN, log); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(sqliteDSN(cfg.DBDSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	database, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" && isMemory(cfg.DBDSN) {
		// every connection to :memory: is its own database
		sqlDB, err := database.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("Database connected", zap.String("driver", cfg.DBDriver))

	if err := Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// Migrate registers the custom join tables and auto-migrates every model.
func Migrate(database *gorm.DB) error {
	if err := database.SetupJoinTable(&models.User{}, "FavoriteProducts", &models.Wishlist{}); err != nil {
		return err
	}
	if err := database.SetupJoinTable(&models.User{}, "Tags", &models.UserTag{}); err != nil {
		return err
	}

	return database.AutoMigrate(
		&models.Category{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.User{}, &models.Address{}, &models.Profile{},
		&models.Tag{}, &models.UserTag{}, &models.Wishlist{},
		&models.Order{}, &models.OrderItem{},
	)
}

// ensureSQLiteFile creates the database file and its directory if missing.
func ensureSQLiteFile(dsn string, log *zap.Logger) error {
	if isMemory(dsn) {
		return nil
	}
	dbPath := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")

	// Ensure the directory exists (create if it doesn't)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Info("Database file does not exist, creating", zap.String("path", dbPath))
		file, err := os.Create(dbPath)
		if err != nil {
			return fmt.Errorf("failed to create database file: %w", err)
		}
		file.Close()
	}
	return nil
}

// sqliteDSN turns on foreign keys, which sqlite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
