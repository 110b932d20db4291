package stats

import "AuthentiGo/pkg/imaging"

// Laplacian applies the 4-neighbour second-derivative kernel
//
//	0  1  0
//	1 -4  1
//	0  1  0
//
// with reflect-101 borders and returns one response per pixel, row-major.
func Laplacian(g *imaging.Gray) []float64 {
	if g == nil || g.Len() == 0 {
		return nil
	}

	out := make([]float64, 0, g.Len())
	eachLaplacian(g, func(v int) {
		out = append(out, float64(v))
	})
	return out
}

// LaplacianVariance is the variance of the Laplacian response, a sharpness proxy.
// Responses are integers in [-1020, 1020] and are binned, not stored.
func LaplacianVariance(g *imaging.Gray) float64 {
	if g == nil || g.Len() == 0 {
		return 0
	}
	var h histogram
	h.reset(-4*255, 4*255)
	eachLaplacian(g, h.add)
	return h.variance()
}

// eachLaplacian calls fn with the response of every pixel in row-major order
func eachLaplacian(g *imaging.Gray, fn func(int)) {
	w, h := g.Width, g.Height
	for y := 0; y < h; y++ {
		up, down := reflect101(y-1, h), reflect101(y+1, h)
		for x := 0; x < w; x++ {
			left, right := reflect101(x-1, w), reflect101(x+1, w)
			fn(int(g.At(x, up)) + int(g.At(x, down)) +
				int(g.At(left, y)) + int(g.At(right, y)) - 4*int(g.At(x, y)))
		}
	}
}

// reflect101 mirrors an out-of-range index without repeating the edge pixel
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// replicate clamps an out-of-range index to the nearest edge
func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
