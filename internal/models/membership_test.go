package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMembershipDuration(t *testing.T) {
	for _, code := range []string{"6_MONTH", "1_YEAR", "2_YEAR"} {
		d, err := ParseMembershipDuration(code)
		require.NoError(t, err)
		assert.Equal(t, MembershipDuration(code), d)
	}
}

func TestParseMembershipDurationRejectsUnknownCodes(t *testing.T) {
	for _, code := range []string{"", "BOGUS", "3_YEAR", "6_month", "1 YEAR"} {
		_, err := ParseMembershipDuration(code)
		assert.Error(t, err, "code %q", code)
	}
}

func TestDurationEndFrom(t *testing.T) {
	start := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		duration MembershipDuration
		want     time.Time
	}{
		{DurationSixMonths, time.Date(2026, time.September, 15, 10, 30, 0, 0, time.UTC)},
		{DurationOneYear, time.Date(2027, time.March, 15, 10, 30, 0, 0, time.UTC)},
		{DurationTwoYears, time.Date(2028, time.March, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.duration.EndFrom(start), "duration %s", tt.duration)
	}
}

func TestDurationEndFromUnknownCodeReturnsStart(t *testing.T) {
	start := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start, MembershipDuration("BOGUS").EndFrom(start))
}

func TestMembershipExpired(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	active := Membership{EndDate: now.AddDate(0, 1, 0)}
	assert.False(t, active.Expired(now))

	lapsed := Membership{EndDate: now.AddDate(0, -1, 0)}
	assert.True(t, lapsed.Expired(now))

	boundary := Membership{EndDate: now}
	assert.False(t, boundary.Expired(now))
}
