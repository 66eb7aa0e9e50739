package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/sim"
)

// Run describes a solved trajectory and the settings that produced it.
type Run struct {
	Model   string
	Solver  string
	Dt      float64
	TEnd    float64
	Labels  dynamo.Labels
	Metrics map[string]float64
	Traj    sim.View
}

type document struct {
	Model   string             `json:"model"`
	Solver  string             `json:"solver"`
	Dt      float64            `json:"dt"`
	TEnd    float64            `json:"t_end"`
	Samples int                `json:"samples"`
	Labels  []string           `json:"labels"`
	Times   []float64          `json:"times"`
	States  [][]float64        `json:"states"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// JSON writes run as one indented JSON document. Only the labelled slots of
// each state are written.
func JSON(w io.Writer, run Run) error {
	n := run.Traj.Len()
	doc := document{
		Model:   run.Model,
		Solver:  run.Solver,
		Dt:      run.Dt,
		TEnd:    run.TEnd,
		Samples: n,
		Labels:  run.Labels.Used(),
		Times:   run.Traj.Times(),
		States:  make([][]float64, n),
		Metrics: run.Metrics,
	}
	slots := run.Labels.Slots()
	for i := 0; i < n; i++ {
		y := run.Traj.At(i).Y
		doc.States[i] = make([]float64, len(slots))
		for j, k := range slots {
			doc.States[i][j] = y[k]
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
