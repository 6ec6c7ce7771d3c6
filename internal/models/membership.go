package models

import (
	"fmt"
	"time"
)

// MembershipDuration is the closed set of plan lengths. Keeping it an
// enumerated type means an unknown code is rejected at the boundary
// instead of silently producing a zero-length membership.
type MembershipDuration string

const (
	DurationSixMonths MembershipDuration = "6_MONTH"
	DurationOneYear   MembershipDuration = "1_YEAR"
	DurationTwoYears  MembershipDuration = "2_YEAR"
)

// ParseMembershipDuration validates a caller-supplied duration code.
func ParseMembershipDuration(code string) (MembershipDuration, error) {
	switch d := MembershipDuration(code); d {
	case DurationSixMonths, DurationOneYear, DurationTwoYears:
		return d, nil
	}
	return "", fmt.Errorf("parse membership duration %q: unrecognized code", code)
}

// EndFrom returns the membership end timestamp for a term starting at
// start.
func (d MembershipDuration) EndFrom(start time.Time) time.Time {
	switch d {
	case DurationSixMonths:
		return start.AddDate(0, 6, 0)
	case DurationOneYear:
		return start.AddDate(1, 0, 0)
	case DurationTwoYears:
		return start.AddDate(2, 0, 0)
	}
	return start
}

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "ACTIVE"
	MembershipExpired MembershipStatus = "EXPIRED"
)

// Expired reports whether the membership term has lapsed as of now. The
// stored status field is not consulted; it reflects the explicit
// lifecycle, not the clock.
func (m Membership) Expired(now time.Time) bool {
	return m.EndDate.Before(now)
}
