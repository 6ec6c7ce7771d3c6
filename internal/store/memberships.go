package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ranjan/go-market-store/internal/database"
	"github.com/ranjan/go-market-store/internal/models"
)

// AddMembership starts a membership for a member reference (a user or
// vendor id; disambiguating is the caller's job). The term runs from now
// for the given duration and the status starts ACTIVE.
func AddMembership(ctx context.Context, db *sql.DB, memberRefID int64, memberType, durationCode string) (*models.Membership, error) {
	duration, err := models.ParseMembershipDuration(durationCode)
	if err != nil {
		return nil, database.ErrInvalidDuration
	}

	start := time.Now().UTC()
	end := duration.EndFrom(start)

	membership := &models.Membership{}
	err = db.QueryRowContext(ctx, `
		INSERT INTO memberships (member_ref_id, member_type, duration, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, member_ref_id, member_type, duration, start_date, end_date, status, created_at, updated_at`,
		memberRefID, memberType, duration, start, end, models.MembershipActive,
	).Scan(
		&membership.ID,
		&membership.MemberRefID,
		&membership.MemberType,
		&membership.Duration,
		&membership.StartDate,
		&membership.EndDate,
		&membership.Status,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}

	return membership, nil
}

// RenewMembership restarts the term from now with the given duration. The
// previous end date is intentionally not extended onto; renewing early
// resets rather than stacks. Status is left as it was.
func RenewMembership(ctx context.Context, db *sql.DB, membershipID int64, durationCode string) (*models.Membership, error) {
	duration, err := models.ParseMembershipDuration(durationCode)
	if err != nil {
		return nil, database.ErrInvalidDuration
	}

	start := time.Now().UTC()
	end := duration.EndFrom(start)

	membership := &models.Membership{}
	err = db.QueryRowContext(ctx, `
		UPDATE memberships
		SET duration = $1, start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, member_ref_id, member_type, duration, start_date, end_date, status, created_at, updated_at`,
		duration, start, end, membershipID,
	).Scan(
		&membership.ID,
		&membership.MemberRefID,
		&membership.MemberType,
		&membership.Duration,
		&membership.StartDate,
		&membership.EndDate,
		&membership.Status,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("renew membership: %w", err)
	}

	return membership, nil
}

func GetMembership(ctx context.Context, db *sql.DB, id int64) (*models.Membership, error) {
	membership := &models.Membership{}

	err := db.QueryRowContext(ctx, `
		SELECT id, member_ref_id, member_type, duration, start_date, end_date, status, created_at, updated_at
		FROM memberships
		WHERE id = $1`,
		id).Scan(
		&membership.ID,
		&membership.MemberRefID,
		&membership.MemberType,
		&membership.Duration,
		&membership.StartDate,
		&membership.EndDate,
		&membership.Status,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return membership, nil
}

// ExpireLapsedMemberships flips ACTIVE memberships whose term has ended
// to EXPIRED. Returns how many rows changed.
func ExpireLapsedMemberships(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND end_date < $3`,
		models.MembershipExpired, models.MembershipActive, now)
	if err != nil {
		return 0, fmt.Errorf("expire memberships: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}
