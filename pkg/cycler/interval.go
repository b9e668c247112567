package cycler

import (
	"math/rand"
	"time"
)

// interval draws cycle durations uniformly from [min, max).
type interval struct {
	min time.Duration
	max time.Duration
	rng *rand.Rand
}

func newInterval(min, max time.Duration, rng *rand.Rand) *interval {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &interval{min: min, max: max, rng: rng}
}

func (iv *interval) draw() time.Duration {
	span := iv.max - iv.min
	if span <= 0 {
		return iv.min
	}
	return iv.min + time.Duration(iv.rng.Int63n(int64(span)))
}
