package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
)

type VendorProfile struct {
	Category string
	Phone    string
	Address  string
	City     string
	State    string
	Pincode  string
}

func AddVendor(ctx context.Context, db *sql.DB, userID int64, profile VendorProfile) (*models.Vendor, error) {
	if _, err := GetUser(ctx, db, userID); err != nil {
		return nil, err
	}

	vendor := &models.Vendor{}

	query := `
		INSERT INTO vendors (user_id, category, phone, address, city, state, pincode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, user_id, category, phone, address, city, state, pincode, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		userID,
		profile.Category,
		profile.Phone,
		profile.Address,
		profile.City,
		profile.State,
		profile.Pincode,
	).Scan(
		&vendor.ID,
		&vendor.UserID,
		&vendor.Category,
		&vendor.Phone,
		&vendor.Address,
		&vendor.City,
		&vendor.State,
		&vendor.Pincode,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	return vendor, nil
}

func GetVendor(ctx context.Context, db *sql.DB, id int64) (*models.Vendor, error) {
	return scanVendorRow(db.QueryRowContext(ctx, `
		SELECT id, user_id, category, phone, address, city, state, pincode, created_at, updated_at
		FROM vendors
		WHERE id = $1`, id))
}

// GetVendorByUser resolves the vendor owned by a user account. Vendors
// are 1:1 with their owning user.
func GetVendorByUser(ctx context.Context, db *sql.DB, userID int64) (*models.Vendor, error) {
	return scanVendorRow(db.QueryRowContext(ctx, `
		SELECT id, user_id, category, phone, address, city, state, pincode, created_at, updated_at
		FROM vendors
		WHERE user_id = $1`, userID))
}

func scanVendorRow(row *sql.Row) (*models.Vendor, error) {
	vendor := &models.Vendor{}

	err := row.Scan(
		&vendor.ID,
		&vendor.UserID,
		&vendor.Category,
		&vendor.Phone,
		&vendor.Address,
		&vendor.City,
		&vendor.State,
		&vendor.Pincode,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVendorNotFound
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}

	return vendor, nil
}

// UpdateVendor overwrites the vendor's contact fields. Category is fixed
// at registration.
func UpdateVendor(ctx context.Context, db *sql.DB, id int64, phone, address, city, state, pincode string) (*models.Vendor, error) {
	vendor := &models.Vendor{}

	query := `
		UPDATE vendors
		SET phone = $1, address = $2, city = $3, state = $4, pincode = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, user_id, category, phone, address, city, state, pincode, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, phone, address, city, state, pincode, id).Scan(
		&vendor.ID,
		&vendor.UserID,
		&vendor.Category,
		&vendor.Phone,
		&vendor.Address,
		&vendor.City,
		&vendor.State,
		&vendor.Pincode,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVendorNotFound
		}
		return nil, fmt.Errorf("update vendor: %w", err)
	}

	return vendor, nil
}

func ListVendors(ctx context.Context, db *sql.DB) ([]models.Vendor, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, category, phone, address, city, state, pincode, created_at, updated_at
		FROM vendors
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		var vendor models.Vendor
		err := rows.Scan(
			&vendor.ID,
			&vendor.UserID,
			&vendor.Category,
			&vendor.Phone,
			&vendor.Address,
			&vendor.City,
			&vendor.State,
			&vendor.Pincode,
			&vendor.CreatedAt,
			&vendor.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return vendors, nil
}
