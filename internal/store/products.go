package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
	"github.com/shopspring/decimal"
)

func AddProduct(ctx context.Context, db *sql.DB, vendorID int64, name, description string, price decimal.Decimal, imageURL string) (*models.Product, error) {
	if _, err := GetVendor(ctx, db, vendorID); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (vendor_id, name, description, price, image_url, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING id, vendor_id, name, description, price, image_url, available, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, vendorID, name, description, price, imageURL).Scan(
		&product.ID,
		&product.VendorID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, vendor_id, name, description, price, image_url, available, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.VendorID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func UpdateProduct(ctx context.Context, db *sql.DB, id int64, name, description string, price decimal.Decimal, imageURL string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, vendor_id, name, description, price, image_url, available, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, name, description, price, imageURL, id).Scan(
		&product.ID,
		&product.VendorID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func SetProductAvailability(ctx context.Context, db *sql.DB, id int64, available bool) error {
	result, err := db.ExecContext(ctx, `
		UPDATE products
		SET available = $1, updated_at = NOW()
		WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("set product availability: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx, `
		SELECT id, vendor_id, name, description, price, image_url, available, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func ListProductsByVendor(ctx context.Context, db *sql.DB, vendorID int64) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, vendor_id, name, description, price, image_url, available, created_at, updated_at
		FROM products
		WHERE vendor_id = $1
		ORDER BY id`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list products by vendor: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.VendorID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.ImageURL,
			&product.Available,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
