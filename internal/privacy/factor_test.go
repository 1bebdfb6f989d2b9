package privacy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateSeed(t *testing.T) {
	assert.Equal(t, uint64(20240315), DateSeed(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)))

	// 23:30 in UTC-5 is already the next day in UTC
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, uint64(20240316), DateSeed(time.Date(2024, 3, 15, 23, 30, 0, 0, est)))
}

func TestDailyFactorDeterministic(t *testing.T) {
	day := time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC)
	later := time.Date(2025, 1, 7, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, DailyFactor(day), DailyFactor(day))
	assert.Equal(t, DailyFactor(day), DailyFactor(later), "factor must be stable within a UTC day")
}

func TestDailyFactorVariesAcrossDays(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seen := map[Factor]struct{}{}
	for i := 0; i < 30; i++ {
		seen[DailyFactor(start.AddDate(0, 0, i))] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestDailyFactorRange(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2035, 12, 31, 0, 0, 0, 0, time.UTC)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		f := DailyFactor(d)
		require.GreaterOrEqual(t, float64(f), float64(MinFactor), d.Format(time.DateOnly))
		require.Less(t, float64(f), float64(MaxFactor), d.Format(time.DateOnly))
	}
}

func TestFactorSources(t *testing.T) {
	fixedNow := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)
	src := DailySource{Now: func() time.Time { return fixedNow }}
	assert.Equal(t, DailyFactor(fixedNow), src.Factor(context.Background()))
	assert.Equal(t, Factor(0.3), Fixed(0.3).Factor(context.Background()))
}
