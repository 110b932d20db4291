package stats

import (
	"math"

	"AuthentiGo/pkg/imaging"
)

// EdgeValue is the intensity written for an edge pixel in a Canny map
const EdgeValue = 255

var (
	tan22 = math.Tan(22.5 * math.Pi / 180)
	tan67 = math.Tan(67.5 * math.Pi / 180)
)

const (
	cannyNone = iota
	cannyWeak
	cannyStrong
)

// Canny runs hysteresis edge detection on g and returns a map holding
// EdgeValue on edge pixels and 0 elsewhere. Gradients come from a 3x3 Sobel
// operator with replicated borders and are measured with the L1 norm.
func Canny(g *imaging.Gray, low, high float64) *imaging.Gray {
	if g == nil || g.Len() == 0 {
		return imaging.NewGray(0, 0)
	}
	if low > high {
		low, high = high, low
	}

	w, h := g.Width, g.Height
	// Sobel responses fit in int16: |gx|, |gy| <= 1020 and |gx|+|gy| <= 2040
	dx := make([]int16, w*h)
	dy := make([]int16, w*h)
	mag := make([]int16, w*h)

	px := func(x, y int) int {
		return int(g.At(replicate(x, w), replicate(y, h)))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)) -
				(px(x-1, y-1) + 2*px(x-1, y) + px(x-1, y+1))
			gy := (px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)) -
				(px(x-1, y-1) + 2*px(x, y-1) + px(x+1, y-1))
			i := y*w + x
			dx[i], dy[i] = int16(gx), int16(gy)
			mag[i] = int16(abs(gx) + abs(gy))
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return int(mag[y*w+x])
	}

	state := make([]uint8, w*h)
	var stack []int

	// Non-maximum suppression along the quantized gradient direction
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := int(mag[i])
			if float64(m) <= low {
				continue
			}

			ax, ay := float64(abs(int(dx[i]))), float64(abs(int(dy[i])))
			var isMax bool
			switch {
			case ay < ax*tan22:
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*tan67:
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if float64(m) > high {
				state[i] = cannyStrong
				stack = append(stack, i)
			} else {
				state[i] = cannyWeak
			}
		}
	}

	// Hysteresis: grow strong edges through 8-connected weak candidates
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == cannyWeak {
					state[j] = cannyStrong
					stack = append(stack, j)
				}
			}
		}
	}

	edges := imaging.NewGray(w, h)
	for i, s := range state {
		if s == cannyStrong {
			edges.Pix[i] = EdgeValue
		}
	}
	return edges
}

// EdgeDensity is the sum of edge-map intensities divided by the pixel count
func EdgeDensity(edges *imaging.Gray) float64 {
	if edges == nil || edges.Len() == 0 {
		return 0
	}
	var sum float64
	for _, v := range edges.Pix {
		sum += float64(v)
	}
	return sum / float64(edges.Len())
}

// CountEdges returns the number of edge pixels in an edge map
func CountEdges(edges *imaging.Gray) int {
	if edges == nil {
		return 0
	}
	n := 0
	for _, v := range edges.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
