package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_enable_pg_trgm.sql",
		"00002_create_manufacturers_table.sql",
		"00003_create_brands_table.sql",
		"00004_create_categories_table.sql",
		"00005_create_stores_table.sql",
		"00006_create_products_catalog_table.sql",
		"00007_create_products_table.sql",
		"00008_create_prices_table.sql",
		"00009_create_updated_at_trigger.sql",
		"00010_create_product_count_triggers.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

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
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"manufacturers":    "00002_create_manufacturers_table.sql",
		"brands":           "00003_create_brands_table.sql",
		"categories":       "00004_create_categories_table.sql",
		"stores":           "00005_create_stores_table.sql",
		"products_catalog": "00006_create_products_catalog_table.sql",
		"products":         "00007_create_products_table.sql",
		"prices":           "00008_create_prices_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestManufacturersTableHasRequiredColumns(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00002_create_manufacturers_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read manufacturers migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"name VARCHAR(255) UNIQUE NOT NULL",
		"tax_id VARCHAR(50) UNIQUE",
		"country VARCHAR",
		"logo_url VARCHAR",
		"website VARCHAR",
		"main_business_line VARCHAR",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Manufacturers table missing required column definition: %s", column)
		}
	}
}

func TestProductsTableHasOneOfferPerStoreConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00007_create_products_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)

	// One offer per (catalog entry, store) pair
	if !strings.Contains(contentStr, "UNIQUE (catalog_id, store_id)") {
		t.Error("Products table missing unique constraint on (catalog_id, store_id)")
	}

	if !strings.Contains(contentStr, "REFERENCES products_catalog(id) ON DELETE CASCADE") {
		t.Error("Products table missing cascading foreign key to products_catalog")
	}

	if !strings.Contains(contentStr, "REFERENCES stores(id) ON DELETE CASCADE") {
		t.Error("Products table missing cascading foreign key to stores")
	}
}

func TestPricesTableHasOneRowPerOffer(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00008_create_prices_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read prices migration: %v", err)
	}

	contentStr := string(content)

	// Current-price model: exactly one price row per offer
	if !strings.Contains(contentStr, "product_id UUID UNIQUE NOT NULL") {
		t.Error("Prices table missing unique constraint on product_id")
	}

	if !strings.Contains(contentStr, "currency VARCHAR(3) NOT NULL DEFAULT 'CLP'") {
		t.Error("Prices table missing CLP currency default")
	}
}

func TestFuzzyNameIndexesUseTrigramOps(t *testing.T) {
	migrationsDir := "../../migrations"

	trigramIndexed := map[string]string{
		"00003_create_brands_table.sql":           "idx_brands_name_trgm",
		"00005_create_stores_table.sql":           "idx_stores_name_trgm",
		"00006_create_products_catalog_table.sql": "idx_products_catalog_name_trgm",
	}

	for migrationFile, indexName := range trigramIndexed {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)
		if !strings.Contains(contentStr, indexName) {
			t.Errorf("Migration file %s missing index %s", migrationFile, indexName)
		}
		if !strings.Contains(contentStr, "gin_trgm_ops") {
			t.Errorf("Migration file %s does not use gin_trgm_ops", migrationFile)
		}
	}
}
