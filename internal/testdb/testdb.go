// Package testdb opens a migrated in-memory database for package tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"p9e.in/saf/config"
)

// Open migrates a private in-memory sqlite database, installs it as
// config.DB and restores the previous handle when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Seed runs the reference seeding on db
func Seed(t testing.TB, db *gorm.DB, demo bool) {
	t.Helper()
	if err := config.RunAllSeeding(db, demo); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
