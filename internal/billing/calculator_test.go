package billing

import (
	"testing"
	"time"

	"trainingdesk/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestServiceDays(t *testing.T) {
	start := date(2024, time.January, 1)

	cases := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same day counts as one", start, 1},
		{"next day counts as one", date(2024, time.January, 2), 1},
		{"four days later", date(2024, time.January, 5), 4},
		{"across month end", date(2024, time.February, 3), 33},
		{"leap day", date(2024, time.March, 1), 60},
		{"two years", date(2026, time.January, 1), 731},
		{"longest allowed span", date(2034, time.January, 1), 3653},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ServiceDays(start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServiceDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.January, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.UTC)

	got, err := ServiceDays(start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestServiceDaysRejectsEndBeforeStart(t *testing.T) {
	_, err := ServiceDays(date(2024, time.January, 5), date(2024, time.January, 1))

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestServiceDaysRejectsOverlongRange(t *testing.T) {
	for _, end := range []time.Time{date(2034, time.January, 2), date(2500, time.January, 1)} {
		_, err := ServiceDays(date(2024, time.January, 1), end)

		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestCompute(t *testing.T) {
	rate := decimal.NewFromInt(500)

	amount, days, err := Compute(date(2024, time.January, 1), date(2024, time.January, 1), rate)
	require.NoError(t, err)
	assert.Equal(t, 1, days)
	assert.True(t, amount.Equal(decimal.NewFromInt(500)), "got %s", amount)

	amount, days, err = Compute(date(2024, time.January, 1), date(2024, time.January, 5), rate)
	require.NoError(t, err)
	assert.Equal(t, 4, days)
	assert.True(t, amount.Equal(decimal.NewFromInt(2000)), "got %s", amount)
}

func TestComputeKeepsCents(t *testing.T) {
	amount, _, err := Compute(date(2024, time.May, 1), date(2024, time.May, 4), decimal.RequireFromString("120.25"))

	require.NoError(t, err)
	assert.Equal(t, "360.75", amount.StringFixed(2))
}

func TestComputeRejectsNegativeRate(t *testing.T) {
	_, _, err := Compute(date(2024, time.May, 1), date(2024, time.May, 4), decimal.NewFromInt(-1))

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
