package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/trajopt/internal/ilqr"
	"github.com/san-kum/trajopt/internal/traj"
)

func sampleRun() (traj.Trajectory, *ilqr.Stats) {
	z := traj.NewTrajectory(2, 1, 4, 0.1)
	for k := range z {
		z[k].X[0] = float64(k)
		z[k].X[1] = -float64(k)
		z[k].U[0] = 0.5 * float64(k)
	}
	stats := &ilqr.Stats{
		Cost:       []float64{10, 5, 4.9},
		DJ:         []float64{0, 5, 0.1},
		Gradient:   []float64{1, 0.1, 1e-6},
		Iterations: 3,
		Converged:  true,
		Reason:     ilqr.ReasonGradientTolerance,
	}
	return z, stats
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	z, stats := sampleRun()
	runID, err := st.Save("pendulum", "control", z, stats, map[string]float64{"terminal_error": 0.01})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Model != "pendulum" {
		t.Errorf("expected model pendulum, got %s", meta.Model)
	}
	if meta.Reason != "gradient_tolerance" {
		t.Errorf("expected reason gradient_tolerance, got %s", meta.Reason)
	}
	if !meta.Converged {
		t.Error("expected converged flag")
	}
	if len(meta.Cost) != 3 {
		t.Errorf("expected 3 cost entries, got %d", len(meta.Cost))
	}

	loaded, times, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumKnots() != 4 {
		t.Fatalf("expected 4 knots, got %d", loaded.NumKnots())
	}
	if loaded[2].X[0] != 2 || loaded[2].U[0] != 1 {
		t.Errorf("trajectory values corrupted: %v %v", loaded[2].X, loaded[2].U)
	}
	if times[3] != 0.3 {
		t.Errorf("expected final time 0.3, got %v", times[3])
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	z, stats := sampleRun()
	if _, err := st.Save("cartpole", "state", z, stats, nil); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Model != "cartpole" {
		t.Errorf("expected cartpole, got %s", runs[0].Model)
	}
}

func TestExportCSV(t *testing.T) {
	z, _ := sampleRun()

	var buf bytes.Buffer
	if err := ExportCSV(&buf, z, z.Times()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,x0,x1,u0" {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestExportJSON(t *testing.T) {
	z, stats := sampleRun()
	meta := &RunMetadata{ID: "test", Model: "pendulum", Cost: stats.Cost}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, z, z.Times()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"states"`) || !strings.Contains(out, `"inputs"`) {
		t.Error("export missing trajectory fields")
	}
}
