// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/monocle-dev/expense-tracker/db"
	"github.com/monocle-dev/expense-tracker/internal/config"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver:     config.DriverSQLite,
		DatabaseURL:        ":memory:",
		SlowQueryThreshold: time.Second,
	}

	gdb, err := db.ConnectDatabase(cfg, nil)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.MigrateDatabase(gdb), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

// CreateUser inserts an active user with a placeholder hash.
func CreateUser(t testing.TB, gdb *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}
