package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
	"github.com/ranjan/go-market-store/internal/store"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := database.MigrateUp(db, "../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// seedCatalog creates a customer, a vendor account with its vendor
// profile, and one product priced 19.99.
func seedCatalog(t *testing.T, db *sql.DB) (customer *models.User, vendor *models.Vendor, product *models.Product) {
	t.Helper()
	ctx := context.Background()

	customer, err := store.CreateUser(ctx, db, "Test Customer", "customer@example.com", models.RoleCustomer)
	if err != nil {
		t.Fatalf("Create customer: %v", err)
	}

	owner, err := store.CreateUser(ctx, db, "Test Vendor", "vendor@example.com", models.RoleVendor)
	if err != nil {
		t.Fatalf("Create vendor user: %v", err)
	}

	vendor, err = store.AddVendor(ctx, db, owner.ID, store.VendorProfile{
		Category: "decor",
		Phone:    "9999999999",
		Address:  "12 Market Road",
		City:     "Pune",
		State:    "MH",
		Pincode:  "411001",
	})
	if err != nil {
		t.Fatalf("Create vendor: %v", err)
	}

	product, err = store.AddProduct(ctx, db, vendor.ID, "Fairy Lights", "Warm white string lights",
		decimal.RequireFromString("19.99"), "https://img.example.com/lights.jpg")
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	return customer, vendor, product
}
