package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/trajopt/internal/traj"
)

type exportRecord struct {
	Meta   *RunMetadata `json:"meta"`
	Times  []float64    `json:"times"`
	States [][]float64  `json:"states"`
	Inputs [][]float64  `json:"inputs"`
}

// ExportJSON writes a run with its full trajectory as a single JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, z traj.Trajectory, times []float64) error {
	rec := exportRecord{
		Meta:   meta,
		Times:  times,
		States: make([][]float64, z.NumKnots()),
		Inputs: make([][]float64, z.NumKnots()-1),
	}
	for k := 0; k < z.NumKnots(); k++ {
		rec.States[k] = append([]float64(nil), z[k].X...)
		if k < z.NumKnots()-1 {
			rec.Inputs[k] = append([]float64(nil), z[k].U...)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// ExportCSV writes a trajectory as CSV rows.
func ExportCSV(w io.Writer, z traj.Trajectory, times []float64) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"time"}
	for i := 0; i < z.StateDim(); i++ {
		header = append(header, "x"+strconv.Itoa(i))
	}
	for i := 0; i < z.ControlDim(); i++ {
		header = append(header, "u"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

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
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
