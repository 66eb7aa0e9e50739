package dynamo

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"zeros", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, 0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, 0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3, 4}
	b := State{4, 5, 6, 7}

	sum := a.Add(b)
	if sum != (State{5, 7, 9, 11}) {
		t.Errorf("Add failed: got %v", sum)
	}

	diff := b.Sub(a)
	if diff != (State{3, 3, 3, 3}) {
		t.Errorf("Sub failed: got %v", diff)
	}

	scaled := a.Scale(2)
	if scaled != (State{2, 4, 6, 8}) {
		t.Errorf("Scale failed: got %v", scaled)
	}

	if a != (State{1, 2, 3, 4}) {
		t.Errorf("arithmetic mutated receiver: %v", a)
	}
}

func TestState_MaxAbsDiff(t *testing.T) {
	a := State{1, -2, 3, 0}
	b := State{1.5, 2, 3, 0}
	if got := a.MaxAbsDiff(b); got != 4 {
		t.Errorf("MaxAbsDiff = %v, want 4", got)
	}
}

func TestLabels_Slots(t *testing.T) {
	tests := []struct {
		labels Labels
		slots  []int
		used   string
	}{
		{Labels{"V", "m", "n", "h"}, []int{0, 1, 2, 3}, "V,m,n,h"},
		{Labels{"x", "v", Unused, Unused}, []int{0, 1}, "x,v"},
		{Labels{"x", "y", "z"}, []int{0, 1, 2}, "x,y,z"},
		{Labels{"a", "", "c", Unused}, []int{0, 2}, "a,c"},
		{Labels{}, []int{}, ""},
	}
	for _, tt := range tests {
		if got := tt.labels.Slots(); !slices.Equal(got, tt.slots) {
			t.Errorf("%v.Slots() = %v, want %v", tt.labels, got, tt.slots)
		}
		if got := strings.Join(tt.labels.Used(), ","); got != tt.used {
			t.Errorf("%v.Used() = %q, want %q", tt.labels, got, tt.used)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero dt", func(c *Config) { c.Dt = 0 }, true},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }, true},
		{"NaN dt", func(c *Config) { c.Dt = math.NaN() }, true},
		{"end before start", func(c *Config) { c.TEnd = c.T0 }, true},
		{"negative rtol", func(c *Config) { c.RTol = -1 }, true},
		{"both tolerances zero", func(c *Config) { c.RTol, c.ATol = 0, 0 }, true},
		{"zero atol", func(c *Config) { c.ATol = 0 }, true},
		{"zero rtol", func(c *Config) { c.RTol = 0 }, true},
		{"negative delay", func(c *Config) { c.Delay = -time.Millisecond }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_Steps(t *testing.T) {
	cfg := Config{T0: 0, TEnd: 1.0, Dt: 0.1}
	if got := cfg.Steps(); got != 10 {
		t.Errorf("Steps() = %d, want 10", got)
	}
	cfg.TEnd = 1.05
	if got := cfg.Steps(); got != 11 {
		t.Errorf("Steps() = %d, want 11", got)
	}
}

func TestNextTime(t *testing.T) {
	tests := []struct {
		name            string
		t0, t, dt, tEnd float64
		want            float64
	}{
		{"grid step", 0, 0.5, 0.25, 1.0, 0.75},
		{"clamped to end", 0, 0.95, 0.1, 1.0, 1.0},
		{"offset start", 2, 2.5, 0.5, 10, 3},
		{"rounding remainder absorbed", 0, 0.9999999999999999 - 0.01, 0.01, 1.0, 1.0},
	}
	for _, tt := range tests {
		if got := NextTime(tt.t0, tt.t, tt.dt, tt.tEnd); got != tt.want {
			t.Errorf("%s: NextTime = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Walking the grid lands on the end time after exactly n steps.
	const n = 5000
	tt, steps := 0.0, 0
	for tt < 50 {
		tt = NextTime(0, tt, 0.01, 50)
		steps++
	}
	if steps != n || tt != 50 {
		t.Errorf("walked %d steps to %v, want %d steps to 50", steps, tt, n)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 150, Wrapped: ErrStepBudget}
	expected := "step 150 (t=1.5000): dynamo: adaptive step budget exhausted"
	if err.Error() != expected {
		t.Errorf("SimulationError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrStepBudget) {
		t.Error("SimulationError should unwrap to the wrapped error")
	}
}
