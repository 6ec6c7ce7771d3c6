package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
	"github.com/ranjan/go-market-store/internal/store"
)

func TestAddVendorRequiresUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.AddVendor(context.Background(), db, 99999, store.VendorProfile{Category: "decor"})
	if !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("Expected user not found, got: %v", err)
	}
}

func TestAddProductRequiresVendor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.AddProduct(context.Background(), db, 99999, "Lamp", "", decimal.NewFromInt(10), "")
	if !errors.Is(err, database.ErrVendorNotFound) {
		t.Errorf("Expected vendor not found, got: %v", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, vendor, product := seedCatalog(t, db)

	if !product.Available {
		t.Error("New products should be available")
	}

	updated, err := store.UpdateProduct(ctx, db, product.ID, "Fairy Lights XL", "Longer string",
		decimal.RequireFromString("24.99"), product.ImageURL)
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}
	if updated.Name != "Fairy Lights XL" {
		t.Errorf("Expected updated name, got %q", updated.Name)
	}
	if !updated.Price.Equal(decimal.RequireFromString("24.99")) {
		t.Errorf("Expected updated price 24.99, got %s", updated.Price)
	}

	if err := store.SetProductAvailability(ctx, db, product.ID, false); err != nil {
		t.Fatalf("Set availability: %v", err)
	}
	fetched, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if fetched.Available {
		t.Error("Expected product unavailable")
	}

	byVendor, err := store.ListProductsByVendor(ctx, db, vendor.ID)
	if err != nil {
		t.Fatalf("List products by vendor: %v", err)
	}
	if len(byVendor) != 1 {
		t.Errorf("Expected 1 product for vendor, got %d", len(byVendor))
	}

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	if _, err := store.GetProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found after delete, got: %v", err)
	}
	if err := store.DeleteProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found on second delete, got: %v", err)
	}
}

func TestVendorLookupAndUpdate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, vendor, _ := seedCatalog(t, db)

	byUser, err := store.GetVendorByUser(ctx, db, vendor.UserID)
	if err != nil {
		t.Fatalf("Get vendor by user: %v", err)
	}
	if byUser.ID != vendor.ID {
		t.Errorf("Expected vendor %d, got %d", vendor.ID, byUser.ID)
	}

	updated, err := store.UpdateVendor(ctx, db, vendor.ID, "7777777777", "9 Hill Road", "Mumbai", "MH", "400001")
	if err != nil {
		t.Fatalf("Update vendor: %v", err)
	}
	if updated.City != "Mumbai" {
		t.Errorf("Expected updated city, got %q", updated.City)
	}
	if updated.Category != vendor.Category {
		t.Errorf("Category should be unchanged, got %q", updated.Category)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := store.CreateUser(ctx, db, "A", "dup@example.com", models.RoleCustomer); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	_, err := store.CreateUser(ctx, db, "B", "dup@example.com", models.RoleCustomer)
	if !errors.Is(err, database.ErrDuplicateEmail) {
		t.Errorf("Expected duplicate email error, got: %v", err)
	}
}
