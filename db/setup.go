package db

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/monocle-dev/expense-tracker/internal/config"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the configured database. Errors from every dialect are
// translated to gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated so the
// repositories can classify them without knowing the driver.
func ConnectDatabase(cfg *config.Config, log *applog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.Discard
	if log != nil {
		gormLogger = logger.New(
			log.WithComponent(applog.ComponentStorage).StdLogger(slog.LevelWarn),
			logger.Config{
				SlowThreshold:             cfg.SlowQueryThreshold,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// One connection keeps an in-memory database alive and serializes
		// writers, which SQLite requires anyway.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DatabaseMaxOpenConns)
	}

	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// MigrateDatabase creates or updates the four tables. Order matters: every
// table is migrated after the tables its foreign keys point at.
func MigrateDatabase(db *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Expense{},
		&models.SharedExpense{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	return nil
}
