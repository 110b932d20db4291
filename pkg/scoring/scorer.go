// Package scoring turns per-image statistics into an authenticity
// probability and maps that probability to a risk level.
package scoring

import (
	"github.com/shopspring/decimal"

	"AuthentiGo/pkg/analyzer/image/stats"
	"AuthentiGo/pkg/imaging"
	"AuthentiGo/pkg/models"
)

// Component weights. They sum to 1.0, which keeps the probability in [0,100].
const (
	NoiseWeight       = 0.35
	EdgeWeight        = 0.30
	CompressionWeight = 0.20
	MetadataWeight    = 0.15
)

// Normalization constants for the raw statistics
const (
	NoiseNormalizer       = 5000.0
	EdgeGain              = 5.0
	CompressionNormalizer = 1000.0

	EdgeLowThreshold  = 100.0
	EdgeHighThreshold = 200.0
)

// Metadata sub-scores
const (
	MetadataPresentScore = 0.2
	MetadataMissingScore = 1.0
)

// Measurements are the raw statistics behind the components
type Measurements struct {
	IntensityVariance float64 `json:"intensityVariance"`
	EdgeDensity       float64 `json:"edgeDensity"`
	EdgePixels        int     `json:"edgePixels"`
	LaplacianVariance float64 `json:"laplacianVariance"`
}

// Result is the output of scoring one image
type Result struct {
	Probability  float64                `json:"probability"`
	Components   models.ScoreComponents `json:"components"`
	Measurements Measurements           `json:"measurements"`
}

// Score computes the probability for a decoded image.
// It fails only when the raster cannot be converted to grayscale.
func Score(img *imaging.Image) (*Result, error) {
	gray, err := img.Grayscale()
	if err != nil {
		return nil, err
	}
	return ScoreGray(gray, img.Metadata), nil
}

// ScoreGray computes the probability from a grayscale matrix and metadata status
func ScoreGray(gray *imaging.Gray, meta models.MetadataStatus) *Result {
	edges := stats.Canny(gray, EdgeLowThreshold, EdgeHighThreshold)

	m := Measurements{
		IntensityVariance: stats.IntensityVariance(gray),
		EdgeDensity:       stats.EdgeDensity(edges),
		EdgePixels:        stats.CountEdges(edges),
		LaplacianVariance: stats.LaplacianVariance(gray),
	}

	c := models.ScoreComponents{
		Noise:       NoiseScore(m.IntensityVariance),
		Edge:        EdgeScore(m.EdgeDensity),
		Compression: CompressionScore(m.LaplacianVariance),
		Metadata:    MetadataScore(meta),
	}

	return &Result{
		Probability:  Combine(c),
		Components:   c,
		Measurements: m,
	}
}

// NoiseScore maps intensity variance to [0,1]; low variance reads as smoothed or synthetic
func NoiseScore(variance float64) float64 {
	return stats.Clamp(variance/NoiseNormalizer, 0, 1)
}

// EdgeScore maps edge density to [0,1]
func EdgeScore(density float64) float64 {
	return stats.Clamp(density*EdgeGain, 0, 1)
}

// CompressionScore maps Laplacian variance to [0,1]; blurry images score near 1
func CompressionScore(laplacianVariance float64) float64 {
	return stats.Clamp(1-laplacianVariance/CompressionNormalizer, 0, 1)
}

// MetadataScore maps a metadata probe outcome to its sub-score.
// Unreadable metadata is scored like missing metadata.
func MetadataScore(status models.MetadataStatus) float64 {
	if status == models.MetadataPresent {
		return MetadataPresentScore
	}
	return MetadataMissingScore
}

// Combine weights the clamped components into a probability rounded to two decimals
func Combine(c models.ScoreComponents) float64 {
	sum := NoiseWeight*stats.Clamp(c.Noise, 0, 1) +
		EdgeWeight*stats.Clamp(c.Edge, 0, 1) +
		CompressionWeight*stats.Clamp(c.Compression, 0, 1) +
		MetadataWeight*stats.Clamp(c.Metadata, 0, 1)

	return decimal.NewFromFloat(sum * 100).Round(2).InexactFloat64()
}
