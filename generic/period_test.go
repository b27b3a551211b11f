package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// DAYS & WEEKS
// =============================================================================

func TestParseDay(t *testing.T) {
	day, err := generic.ParseDay("2025-05-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-12", day.String())
	assert.Equal(t, time.Monday, day.Weekday())

	_, err = generic.ParseDay("2025-13-01")
	assert.Error(t, err)
	_, err = generic.ParseDay("12/05/2025")
	assert.Error(t, err)
}

func TestStartOfWeek_IsMonday(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2025-05-12", "2025-05-12"}, // Monday
		{"2025-05-14", "2025-05-12"}, // Wednesday
		{"2025-05-18", "2025-05-12"}, // Sunday
		{"2025-06-01", "2025-05-26"}, // Sunday across a month
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			day, err := generic.ParseDay(tt.day)
			require.NoError(t, err)

			assert.Equal(t, tt.want, generic.StartOfWeek(day).String())
		})
	}
}

func TestWeekOf(t *testing.T) {
	week := generic.WeekOf(generic.NewTimePoint(2025, 5, 14))

	assert.Equal(t, "[2025-05-12, 2025-05-18]", week.String())
	assert.Len(t, week.Days(), 7)
	assert.Equal(t, "[2025-05-19, 2025-05-25]", week.NextPeriod().String())
	assert.Equal(t, "[2025-05-05, 2025-05-11]", week.PreviousPeriod().String())
}

// =============================================================================
// PERIODS
// =============================================================================

func TestParsePeriod(t *testing.T) {
	p, err := generic.ParsePeriod("2025-05-12", "2025-05-18")
	require.NoError(t, err)
	assert.True(t, p.Contains(generic.NewTimePoint(2025, 5, 12)))
	assert.True(t, p.Contains(generic.NewTimePoint(2025, 5, 18)))
	assert.False(t, p.Contains(generic.NewTimePoint(2025, 5, 19)))

	open, err := generic.ParsePeriod("", "")
	require.NoError(t, err)
	assert.True(t, open.Contains(generic.NewTimePoint(1999, 1, 1)))
	assert.Nil(t, open.Days())

	from, err := generic.ParsePeriod("2025-05-12", "")
	require.NoError(t, err)
	assert.False(t, from.Contains(generic.NewTimePoint(2025, 5, 11)))
	assert.True(t, from.Contains(generic.NewTimePoint(2030, 1, 1)))
}

func TestParsePeriod_Invalid(t *testing.T) {
	_, err := generic.ParsePeriod("2025-05-18", "2025-05-12")
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	assert.True(t, generic.IsClientError(err))

	_, err = generic.ParsePeriod("yesterday", "")
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "from", verr.Field)

	_, err = generic.ParsePeriod("", "tomorrow")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "to", verr.Field)
}

// =============================================================================
// DECIMALS & ERRORS
// =============================================================================

func TestPercent(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.15").Equal(generic.Percent(decimal.NewFromInt(15))))
	assert.True(t, decimal.RequireFromString("0.0825").Equal(generic.Percent(decimal.RequireFromString("8.25"))))
}

func TestErrorClassification(t *testing.T) {
	verr := &generic.ValidationError{Field: "duration", Value: 0, Reason: "must be at least 1 hour"}
	nf := &generic.NotFoundError{Kind: "quote", ID: "Q-9"}

	assert.Equal(t, "invalid duration (0): must be at least 1 hour", verr.Error())
	assert.Equal(t, "quote not found: Q-9", nf.Error())
	assert.True(t, generic.IsClientError(verr))
	assert.True(t, generic.IsClientError(generic.ErrInvalidTransition))
	assert.False(t, generic.IsClientError(nf))
	assert.True(t, generic.IsNotFound(nf))
	assert.False(t, generic.IsDuplicate(nf))
}
