package metrics

import "github.com/san-kum/odestream/internal/dynamo"

// SpikeCount counts upward crossings of a threshold in one state slot,
// e.g. action potentials in the membrane voltage.
type SpikeCount struct {
	name      string
	slot      int
	threshold float64
	above     bool
	started   bool
	count     int
	lastSpike float64
}

func NewSpikeCount(slot int, threshold float64) *SpikeCount {
	return &SpikeCount{
		name:      "spikes",
		slot:      slot,
		threshold: threshold,
	}
}

func (s *SpikeCount) Name() string { return s.name }

func (s *SpikeCount) OnSample(t float64, y dynamo.State) {
	above := y[s.slot] >= s.threshold
	if s.started && above && !s.above {
		s.count++
		s.lastSpike = t
	}
	s.above = above
	s.started = true
}

func (s *SpikeCount) Value() float64 { return float64(s.count) }

// LastSpike is the time of the most recent crossing, or zero.
func (s *SpikeCount) LastSpike() float64 { return s.lastSpike }

func (s *SpikeCount) Reset() {
	s.above = false
	s.started = false
	s.count = 0
	s.lastSpike = 0
}
