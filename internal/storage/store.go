package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/trajopt/internal/ilqr"
	"github.com/san-kum/trajopt/internal/traj"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	Knots     int                `json:"knots"`
	Dt        float64            `json:"dt"`
	RegType   string             `json:"reg_type"`
	Reason    string             `json:"reason"`
	Converged bool               `json:"converged"`
	Iters     int                `json:"iterations"`
	FinalCost float64            `json:"final_cost"`
	RegEvents int                `json:"reg_increases"`
	FinalRho  float64            `json:"final_rho"`
	Cost      []float64          `json:"cost"`
	DJ        []float64          `json:"dj"`
	Gradient  []float64          `json:"gradient"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one solve to disk: metadata.json with the iteration history
// and trajectory.csv with the knot sequence.
func (s *Store) Save(model string, regType string, z traj.Trajectory, stats *ilqr.Stats, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Timestamp: time.Now(),
		Knots:     z.NumKnots(),
		Dt:        z[0].Dt,
		RegType:   regType,
		Reason:    stats.Reason.String(),
		Converged: stats.Converged,
		Iters:     stats.Iterations,
		FinalCost: stats.FinalCost(),
		RegEvents: stats.RegIncreases,
		FinalRho:  stats.FinalRho,
		Cost:      stats.Cost,
		DJ:        stats.DJ,
		Gradient:  stats.Gradient,
		Metrics:   metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if z.NumKnots() == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := 0; i < z.StateDim(); i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < z.ControlDim(); i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	times := z.Times()
	last := z.NumKnots() - 1
	for k := 0; k < z.NumKnots(); k++ {
		row := []string{strconv.FormatFloat(times[k], 'f', 6, 64)}
		for _, v := range z[k].X {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range z[k].U {
			if k == last {
				row = append(row, "0")
			} else {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads trajectory.csv back into knot form.
func (s *Store) LoadTrajectory(runID string) (traj.Trajectory, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("run %s has no trajectory data", runID)
	}

	header := records[0]
	n, m := 0, 0
	for _, col := range header {
		if len(col) > 1 && col[0] == 'x' {
			n++
		}
		if len(col) > 1 && col[0] == 'u' {
			m++
		}
	}

	rows := records[1:]
	z := traj.NewTrajectory(n, m, len(rows), meta.Dt)
	times := make([]float64, len(rows))
	for k, row := range rows {
		if len(row) != 1+n+m {
			return nil, nil, fmt.Errorf("run %s: malformed row %d", runID, k+1)
		}
		times[k], _ = strconv.ParseFloat(row[0], 64)
		for i := 0; i < n; i++ {
			z[k].X[i], _ = strconv.ParseFloat(row[1+i], 64)
		}
		for i := 0; i < m; i++ {
			z[k].U[i], _ = strconv.ParseFloat(row[1+n+i], 64)
		}
	}
	return z, times, nil
}

func (s *Store) List() ([]*RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []*RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}
