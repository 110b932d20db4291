package stats

import (
	"gonum.org/v1/gonum/stat"

	"AuthentiGo/pkg/imaging"
)

// Variance returns the population variance of values, 0 for an empty slice
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// IntensityVariance returns the population variance of a grayscale matrix.
// It works from a 256-bin histogram instead of a float copy of the pixels.
func IntensityVariance(g *imaging.Gray) float64 {
	if g == nil || g.Len() == 0 {
		return 0
	}
	var h histogram
	h.reset(0, 255)
	for _, v := range g.Pix {
		h.add(int(v))
	}
	return h.variance()
}

// histogram counts integer samples in [min, max]
type histogram struct {
	min    int
	counts []float64
	total  int
}

func (h *histogram) reset(min, max int) {
	h.min = min
	h.counts = make([]float64, max-min+1)
	h.total = 0
}

func (h *histogram) add(v int) {
	h.counts[v-h.min]++
	h.total++
}

// variance is the population variance of the samples, weighted by bin count
func (h *histogram) variance() float64 {
	if h.total < 2 {
		return 0
	}
	values := make([]float64, 0, len(h.counts))
	weights := make([]float64, 0, len(h.counts))
	for i, c := range h.counts {
		if c == 0 {
			continue
		}
		values = append(values, float64(h.min+i))
		weights = append(weights, c)
	}
	if len(values) < 2 {
		return 0
	}
	return stat.PopVariance(values, weights)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
