package metrics

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// SettlingTime is the last instant at which any state component was
// outside ±band. A run that starts and stays inside the band settles at 0;
// one that never settles reports its final time.
type SettlingTime struct {
	band float64
	last float64
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{band: band}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x dynamo.State, t float64) {
	for _, v := range x {
		if math.Abs(v) > s.band {
			s.last = t
			return
		}
	}
}

func (s *SettlingTime) Value() float64 { return s.last }

func (s *SettlingTime) Reset() { s.last = 0 }
