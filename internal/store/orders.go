package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	UserID        int64
	PaymentMethod string
	Delivery      models.DeliveryDetails
}

func generateOrderNumber() string {
	return "ORD-" + uuid.NewString()
}

// PlaceOrder turns the user's cart into a persisted order. Inside one
// serializable transaction it locks the cart lines, snapshots each into an
// order item, derives the order total from those lines, writes the order
// and its initial RECEIVED status, and empties the cart. A failure at any
// step rolls back the whole sequence, so an order without a status row or
// with a stale cart is never observable.
//
// The total is always computed server-side from the cart; callers supply
// only payment method and delivery details.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
			req.UserID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !exists {
			return database.ErrUserNotFound
		}

		var cartID int64
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM carts WHERE user_id = $1",
			req.UserID).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrEmptyCart
			}
			return fmt.Errorf("get cart: %w", err)
		}

		lines, err := cartItemsForUpdate(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return database.ErrEmptyCart
		}

		var totalAmount decimal.Decimal
		productNames := make(map[int64]string)

		for _, line := range lines {
			var name string
			err := tx.QueryRowContext(ctx,
				"SELECT name FROM products WHERE id = $1",
				line.ProductID).Scan(&name)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("get product %d: %w", line.ProductID, err)
			}

			productNames[line.ProductID] = name
			totalAmount = totalAmount.Add(line.TotalPrice)
		}

		orderNumber := generateOrderNumber()
		var orderID int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, order_number, total_amount, payment_method,
			                    delivery_name, delivery_email, delivery_address,
			                    delivery_city, delivery_state, delivery_pincode, delivery_phone,
			                    created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			RETURNING id`,
			req.UserID, orderNumber, totalAmount, req.PaymentMethod,
			req.Delivery.Name, req.Delivery.Email, req.Delivery.Address,
			req.Delivery.City, req.Delivery.State, req.Delivery.Pincode, req.Delivery.Phone,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range lines {
			// The unit price backing the line total the user saw at
			// add time, not the product's current price.
			unitPrice := line.TotalPrice.Div(decimal.NewFromInt(int64(line.Quantity)))

			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
				orderID, line.ProductID, productNames[line.ProductID],
				line.Quantity, unitPrice, line.TotalPrice)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_statuses (order_id, status, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())`,
			orderID, models.OrderStatusReceived)
		if err != nil {
			return fmt.Errorf("create order status: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order = &models.Order{ID: orderID}
		err = tx.QueryRowContext(ctx, `
			SELECT order_number, user_id, total_amount, payment_method,
			       delivery_name, delivery_email, delivery_address,
			       delivery_city, delivery_state, delivery_pincode, delivery_phone,
			       created_at
			FROM orders WHERE id = $1`,
			orderID).Scan(
			&order.OrderNumber,
			&order.UserID,
			&order.TotalAmount,
			&order.PaymentMethod,
			&order.Delivery.Name,
			&order.Delivery.Email,
			&order.Delivery.Address,
			&order.Delivery.City,
			&order.Delivery.State,
			&order.Delivery.Pincode,
			&order.Delivery.Phone,
			&order.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		order.Status = models.OrderStatusReceived
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := db.QueryRowContext(ctx, `
		SELECT o.id, o.user_id, o.order_number, o.total_amount, o.payment_method,
		       o.delivery_name, o.delivery_email, o.delivery_address,
		       o.delivery_city, o.delivery_state, o.delivery_pincode, o.delivery_phone,
		       o.created_at, s.status
		FROM orders o
		JOIN order_statuses s ON s.order_id = o.id
		WHERE o.id = $1`,
		id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.Delivery.Name,
		&order.Delivery.Email,
		&order.Delivery.Address,
		&order.Delivery.City,
		&order.Delivery.State,
		&order.Delivery.Pincode,
		&order.Delivery.Phone,
		&order.CreatedAt,
		&order.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

// ListOrdersByUser pages through a user's orders newest-first with an
// opaque keyset cursor.
func ListOrdersByUser(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT o.id, o.order_number, o.total_amount, o.payment_method, o.created_at, s.status
		FROM orders o
		JOIN order_statuses s ON s.order_id = o.id
		WHERE o.user_id = $1
		  AND (o.created_at, o.id) < ($2, $3)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`,
		userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order := models.Order{UserID: userID}
		err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.TotalAmount,
			&order.PaymentMethod,
			&order.CreatedAt,
			&order.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// UpdateOrderStatus advances an order through the fulfillment state
// machine. The single status row is overwritten in place; no history is
// kept. Transitions outside the allowed table are rejected.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID int64, newStatus models.OrderStatus) (models.OrderStatus, error) {
	if !newStatus.Valid() {
		return "", database.ErrInvalidTransition
	}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)",
			orderID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return database.ErrOrderNotFound
		}

		var current models.OrderStatus
		err = tx.QueryRowContext(ctx, `
			SELECT status FROM order_statuses
			WHERE order_id = $1
			FOR UPDATE`,
			orderID).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderStatusNotFound
			}
			return fmt.Errorf("get order status: %w", err)
		}

		if !current.CanTransition(newStatus) {
			return database.ErrInvalidTransition
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE order_statuses
			SET status = $1, updated_at = NOW()
			WHERE order_id = $2`,
			newStatus, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return newStatus, nil
}
