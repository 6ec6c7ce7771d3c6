package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/store"
)

func TestGetOrCreateCartIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, _ := seedCatalog(t, db)

	first, err := store.GetOrCreateCart(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("Get or create cart: %v", err)
	}
	if first.ID == 0 {
		t.Error("Cart ID should not be 0")
	}

	second, err := store.GetOrCreateCart(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("Get or create cart again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same cart ID %d, got %d", first.ID, second.ID)
	}
}

func TestGetOrCreateCartUnknownUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.GetOrCreateCart(context.Background(), db, 99999)
	if err != database.ErrUserNotFound {
		t.Errorf("Expected user not found, got: %v", err)
	}
}

func TestConcurrentCartCreation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, _ := seedCatalog(t, db)

	concurrency := 10
	var wg sync.WaitGroup
	cartIDs := make(chan int64, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cart, err := store.GetOrCreateCart(ctx, db, customer.ID)
			if err != nil {
				t.Errorf("Get or create cart: %v", err)
				return
			}
			cartIDs <- cart.ID
		}()
	}

	wg.Wait()
	close(cartIDs)

	seen := make(map[int64]bool)
	for id := range cartIDs {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("Expected every caller to get the same cart, got %d distinct ids", len(seen))
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM carts WHERE user_id = $1", customer.ID).Scan(&count); err != nil {
		t.Fatalf("Count carts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 cart row, got %d", count)
	}
}

func TestAddCartItemComputesTotal(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, product := seedCatalog(t, db)

	item, err := store.AddCartItem(ctx, db, customer.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("Add cart item: %v", err)
	}

	expected := decimal.RequireFromString("59.97")
	if !item.TotalPrice.Equal(expected) {
		t.Errorf("Expected total %s, got %s", expected, item.TotalPrice)
	}
	if item.Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", item.Quantity)
	}
}

func TestAddCartItemRejectsNonPositiveQuantity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, product := seedCatalog(t, db)

	for _, quantity := range []int{0, -1} {
		_, err := store.AddCartItem(ctx, db, customer.ID, product.ID, quantity)
		if err != database.ErrInvalidQuantity {
			t.Errorf("Quantity %d: expected invalid quantity error, got: %v", quantity, err)
		}
	}

	items, err := store.ListCartItems(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("List cart items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no rows created, got %d", len(items))
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, _ := seedCatalog(t, db)

	_, err := store.AddCartItem(ctx, db, customer.ID, 99999, 1)
	if err != database.ErrProductNotFound {
		t.Errorf("Expected product not found, got: %v", err)
	}
}

func TestAddCartItemKeepsDistinctLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, product := seedCatalog(t, db)

	if _, err := store.AddCartItem(ctx, db, customer.ID, product.ID, 1); err != nil {
		t.Fatalf("Add first line: %v", err)
	}
	if _, err := store.AddCartItem(ctx, db, customer.ID, product.ID, 2); err != nil {
		t.Fatalf("Add second line: %v", err)
	}

	items, err := store.ListCartItems(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("List cart items: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 distinct lines for the same product, got %d", len(items))
	}
}

func TestRemoveCartItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, product := seedCatalog(t, db)

	item, err := store.AddCartItem(ctx, db, customer.ID, product.ID, 1)
	if err != nil {
		t.Fatalf("Add cart item: %v", err)
	}

	if err := store.RemoveCartItem(ctx, db, item.ID); err != nil {
		t.Fatalf("Remove cart item: %v", err)
	}

	items, err := store.ListCartItems(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("List cart items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}

	if err := store.RemoveCartItem(ctx, db, item.ID); err != database.ErrCartItemNotFound {
		t.Errorf("Expected cart item not found on second remove, got: %v", err)
	}
}

func TestClearCartIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer, _, product := seedCatalog(t, db)

	if _, err := store.AddCartItem(ctx, db, customer.ID, product.ID, 2); err != nil {
		t.Fatalf("Add cart item: %v", err)
	}

	if err := store.ClearCart(ctx, db, customer.ID); err != nil {
		t.Fatalf("Clear cart: %v", err)
	}
	if err := store.ClearCart(ctx, db, customer.ID); err != nil {
		t.Fatalf("Clear empty cart: %v", err)
	}

	items, err := store.ListCartItems(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("List cart items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}
