package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"items-api/internal/config"
	"items-api/internal/domain"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestItemsTableHasRequiredColumns(t *testing.T) {
	content := readMigration(t, "00001_create_items_table.sql")

	requiredColumns := []string{
		"CREATE TABLE IF NOT EXISTS items",
		"id UUID PRIMARY KEY",
		"name TEXT NOT NULL",
		"description TEXT",
		"price DOUBLE PRECISION NOT NULL",
		"category TEXT",
		"stock INTEGER",
		"created_at TIMESTAMPTZ NOT NULL",
		"updated_at TIMESTAMPTZ NOT NULL",
		"DROP TABLE IF EXISTS items",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(content, column) {
			t.Errorf("Items migration missing: %s", column)
		}
	}
}

func TestItemsTableConstrainsCategories(t *testing.T) {
	content := readMigration(t, "00001_create_items_table.sql")

	for _, category := range domain.Categories {
		if !strings.Contains(content, "'"+string(category)+"'") {
			t.Errorf("Items category constraint missing value: %s", category)
		}
	}
}

func TestConnString(t *testing.T) {
	got := ConnString(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "items",
		Password: "p@ss word",
		Database: "catalog",
		Schema:   "public",
	})

	want := "postgres://items:p%40ss%20word@db:5432/catalog?search_path=public&sslmode=disable"
	if got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}
