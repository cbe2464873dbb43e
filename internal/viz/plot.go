package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// CostCurve plots the per-iteration cost on a log10 axis, which keeps the
// early steep descent and the late flat tail both visible.
func CostCurve(cost []float64, width, height int) string {
	if len(cost) == 0 {
		return ""
	}
	data := make([]float64, len(cost))
	for i, c := range cost {
		if c > 0 {
			data[i] = math.Log10(c)
		}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("log10(cost) vs iteration"),
	)
}

// Series plots one scalar series with a caption.
func Series(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
