package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
)

// GetOrCreateCart returns the user's cart, creating an empty one on first
// touch. The insert goes through ON CONFLICT DO NOTHING against the
// unique user_id index, so concurrent first-time callers all converge on
// the same row.
func GetOrCreateCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart, err := getCartByUser(ctx, db, userID)
	if err == nil {
		return cart, nil
	}
	if err != database.ErrCartNotFound {
		return nil, err
	}

	if _, err := GetUser(ctx, db, userID); err != nil {
		return nil, err
	}

	cart = &models.Cart{}
	err = db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, created_at`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err == sql.ErrNoRows {
		// Lost the race; another caller just created it.
		return getCartByUser(ctx, db, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	return cart, nil
}

func getCartByUser(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}

	err := db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddCartItem appends a new line to the user's cart. Every call creates a
// distinct row; lines for the same product are not merged. The line total
// is fixed at add time from the current product price.
func AddCartItem(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, database.ErrInvalidQuantity
	}

	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	product, err := GetProduct(ctx, db, productID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{}
	total := models.LineTotal(product.Price, quantity)

	err = db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, total_price, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, cart_id, product_id, quantity, total_price, created_at`,
		cart.ID, productID, quantity, total).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.TotalPrice,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	return item, nil
}

// RemoveCartItem deletes a single line by id. A missing id is reported as
// not found rather than ignored, so the API layer can 404.
func RemoveCartItem(ctx context.Context, db *sql.DB, cartItemID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, cartItemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

// ListCartItems returns the user's current cart lines in insertion order.
func ListCartItems(ctx context.Context, db *sql.DB, userID int64) ([]models.CartItem, error) {
	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, cart_id, product_id, quantity, total_price, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	return collectCartItems(rows)
}

// ClearCart removes every line from the user's cart. Clearing an empty
// cart is a no-op.
func ClearCart(ctx context.Context, db *sql.DB, userID int64) error {
	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// cartItemsForUpdate locks and returns a cart's lines inside an open
// transaction. Order placement uses this so the lines it snapshots are
// the lines it deletes.
func cartItemsForUpdate(ctx context.Context, tx *sql.Tx, cartID int64) ([]models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, cart_id, product_id, quantity, total_price, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
		FOR UPDATE`, cartID)
	if err != nil {
		return nil, fmt.Errorf("lock cart items: %w", err)
	}
	defer rows.Close()

	return collectCartItems(rows)
}

func collectCartItems(rows *sql.Rows) ([]models.CartItem, error) {
	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
