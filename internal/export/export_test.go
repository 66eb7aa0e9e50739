package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/sim"
)

func testRun(t *testing.T) Run {
	t.Helper()
	traj := sim.NewTrajectory()
	for i, y := range []dynamo.State{{1, 0}, {0.9, -0.1}, {0.7, -0.3}} {
		if err := traj.Append(float64(i)*0.5, y); err != nil {
			t.Fatal(err)
		}
	}
	return Run{
		Model:   "harmonic_oscillator",
		Solver:  "runge_kutta_4",
		Dt:      0.5,
		TEnd:    1,
		Labels:  dynamo.Labels{"x (m)", "v (m/s)", dynamo.Unused, dynamo.Unused},
		Metrics: map[string]float64{"energy_drift": 0.01},
		Traj:    traj,
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, testRun(t)); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if doc.Model != "harmonic_oscillator" || doc.Samples != 3 {
		t.Errorf("header = %+v", doc)
	}
	if len(doc.States) != 3 || len(doc.States[1]) != 2 || doc.States[1][1] != -0.1 {
		t.Errorf("states = %v", doc.States)
	}
	if doc.Times[2] != 1 {
		t.Errorf("times = %v", doc.Times)
	}
	if doc.Metrics["energy_drift"] != 0.01 {
		t.Errorf("metrics = %v", doc.Metrics)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, testRun(t)); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("rows = %d, want 4", len(records))
	}
	if strings.Join(records[0], ",") != "t,x (m),v (m/s)" {
		t.Errorf("header = %v", records[0])
	}
	if strings.Join(records[2], ",") != "0.5,0.9,-0.1" {
		t.Errorf("row = %v", records[2])
	}
}

func TestExportSkipsUnlabelledSlots(t *testing.T) {
	traj := sim.NewTrajectory()
	if err := traj.Append(0, dynamo.State{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	run := Run{Labels: dynamo.Labels{"a", "", "c", dynamo.Unused}, Traj: traj}

	var buf bytes.Buffer
	if err := CSV(&buf, run); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "t,a,c\n0,1,3\n" {
		t.Errorf("csv = %q", got)
	}

	buf.Reset()
	if err := JSON(&buf, run); err != nil {
		t.Fatal(err)
	}
	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if strings.Join(doc.Labels, ",") != "a,c" || len(doc.States[0]) != 2 || doc.States[0][1] != 3 {
		t.Errorf("labels %v states %v", doc.Labels, doc.States)
	}
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, testRun(t).Traj, 0, 1, 200, 100, "#00ff00"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "</svg>") {
		t.Errorf("not an svg document:\n%s", out)
	}
	if got := strings.Count(out, " L"); got != 2 {
		t.Errorf("path segments = %d, want 2", got)
	}

	if err := SVG(&buf, sim.NewTrajectory(), 0, 1, 10, 10, "#fff"); err == nil {
		t.Error("expected an error for an empty trajectory")
	}
}
