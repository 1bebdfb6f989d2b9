package privacy

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Factor scales amounts in the guest view.
type Factor float64

const (
	MinFactor Factor = 0.2
	MaxFactor Factor = 0.4 // exclusive
)

// factorKey separates the date hash from other uses of the same hash.
const factorKey = "findash/daily-factor/"

// DateSeed returns the UTC calendar date of t as the integer YYYYMMDD.
// The factor rolls over at UTC midnight whatever the host zone is.
func DateSeed(t time.Time) uint64 {
	y, m, d := t.UTC().Date()
	return uint64(y)*10000 + uint64(m)*100 + uint64(d)
}

// DailyFactor maps the UTC date of t into [MinFactor, MaxFactor).
func DailyFactor(t time.Time) Factor {
	buf := make([]byte, len(factorKey)+8)
	copy(buf, factorKey)
	binary.BigEndian.PutUint64(buf[len(factorKey):], DateSeed(t))

	// top 53 bits give a uniform float in [0, 1)
	u := float64(xxhash.Sum64(buf)>>11) / (1 << 53)
	f := MinFactor + Factor(u)*(MaxFactor-MinFactor)
	if f >= MaxFactor {
		f = Factor(math.Nextafter(float64(MaxFactor), float64(MinFactor)))
	}
	return f
}

// FactorSource yields the factor for a request.
type FactorSource interface {
	Factor(ctx context.Context) Factor
}

// DailySource computes the factor from the current date.
type DailySource struct {
	Now func() time.Time
}

func (s DailySource) Factor(context.Context) Factor {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return DailyFactor(now())
}

// Fixed is a FactorSource that always returns the same factor.
type Fixed Factor

func (f Fixed) Factor(context.Context) Factor { return Factor(f) }
