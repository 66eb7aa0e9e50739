package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odestream/internal/dynamo"
)

// BifurcationPoint represents the recurring values seen for one parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64 // local maxima of the recorded slot
}

// Builder returns a model and its initial state for one parameter value.
type Builder func(param float64) (dynamo.System, dynamo.State)

// BifurcationDiagram sweeps a parameter and records the local maxima of one
// state slot after a transient. A single value means a fixed point or a
// period-one orbit; a spread of values indicates chaos.
func BifurcationDiagram(
	build Builder,
	integ dynamo.Integrator,
	params []float64,
	slot int,
	dt, transient, record float64,
) ([]BifurcationPoint, error) {
	if slot < 0 || slot >= dynamo.Dim || dt <= 0 || record <= 0 || transient < 0 {
		return nil, fmt.Errorf("bifurcation: %w: slot=%d dt=%g transient=%g record=%g",
			dynamo.ErrInvalidConfig, slot, dt, transient, record)
	}

	results := make([]BifurcationPoint, 0, len(params))
	for _, p := range params {
		dyn, y := build(p)

		var err error
		if transient > 0 {
			if y, err = integ.Integrate(dyn, 0, transient, y); err != nil {
				return results, fmt.Errorf("param %g: %w", p, err)
			}
		}

		end := transient + record
		values := make([]float64, 0, 64)
		seen := make(map[int64]bool)
		prev2, prev1 := math.NaN(), y[slot]
		for t := transient; t < end; {
			next := dynamo.NextTime(transient, t, dt, end)
			if y, err = integ.Integrate(dyn, t, next, y); err != nil {
				return results, fmt.Errorf("param %g: %w", p, err)
			}
			t = next

			curr := y[slot]
			if prev1 > prev2 && prev1 >= curr {
				// quantize so a periodic orbit reports each peak once
				key := int64(math.Round(prev1 * 1000))
				if !seen[key] {
					seen[key] = true
					values = append(values, prev1)
				}
			}
			prev2, prev1 = prev1, curr
		}

		results = append(results, BifurcationPoint{Param: p, Values: values})
	}
	return results, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find value range - need at least one valid value
	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
			} else {
				minVal = math.Min(minVal, v)
				maxVal = math.Max(maxVal, v)
			}
		}
	}
	if !foundFirst {
		return ""
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
