package metrics

import (
	"math"

	"github.com/san-kum/odestream/internal/dynamo"
)

// Stability is the fraction of samples whose slots all stay within bound in
// absolute value. A non-finite slot counts as out of bound.
type Stability struct {
	bound   float64
	n, out  int
	escaped float64
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound, escaped: math.NaN()}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) OnSample(t float64, y dynamo.State) {
	s.n++
	for _, v := range y {
		if !(math.Abs(v) <= s.bound) {
			s.out++
			if math.IsNaN(s.escaped) {
				s.escaped = t
			}
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.n == 0 {
		return 1
	}
	return 1 - float64(s.out)/float64(s.n)
}

// Escaped returns the time of the first out of bound sample, or NaN if
// every sample so far stayed inside.
func (s *Stability) Escaped() float64 { return s.escaped }

func (s *Stability) Reset() {
	s.n, s.out = 0, 0
	s.escaped = math.NaN()
}
