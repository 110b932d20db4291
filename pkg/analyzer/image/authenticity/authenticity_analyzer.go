package authenticity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/extractor"
	"AuthentiGo/pkg/filehandler"
	"AuthentiGo/pkg/imaging"
	"AuthentiGo/pkg/models"
	"AuthentiGo/pkg/scoring"
)

/*
Summary of this file:
- AuthenticityAnalyzer implements analyzer.ImageAnalyzer for every decodable raster format.
- Analyze reads a file and hands its bytes to AnalyzeBytes.
- AnalyzeBytes decodes the image, probes its capture metadata through the extractor
  registry and calls AnalyzeImage.
- AnalyzeImage scores the image, classifies the probability and explains the
  sub-scores as findings and recommendations.
*/

var _ analyzer.ImageAnalyzer = (*AuthenticityAnalyzer)(nil)

// Formats lists every format the analyzer accepts
var Formats = []string{"jpeg", "png", "gif", "bmp", "tiff", "webp"}

// AuthenticityAnalyzer estimates how likely an image is manipulated or generated
type AuthenticityAnalyzer struct {
	analyzer.BaseAnalyzer
	metadata *extractor.Registry
}

// NewAuthenticityAnalyzer creates a new analyzer that probes metadata with the given registry
func NewAuthenticityAnalyzer(metadata *extractor.Registry) *AuthenticityAnalyzer {
	if metadata == nil {
		metadata = extractor.NewRegistry()
	}
	return &AuthenticityAnalyzer{
		BaseAnalyzer: analyzer.NewBaseAnalyzer(
			"Authenticity Analyzer",
			"Scores pixel noise, edge density, compression and capture metadata into a manipulation likelihood",
			Formats,
		),
		metadata: metadata,
	}
}

// Analyze performs analysis on an image file
func (a *AuthenticityAnalyzer) Analyze(filePath string, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	data, err := filehandler.ReadFileBytes(filePath, options.MaxFileBytes)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeBytes(filePath, data, options)
}

// AnalyzeBytes performs analysis on raw image content
func (a *AuthenticityAnalyzer) AnalyzeBytes(name string, data []byte, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	start := time.Now()

	img, err := imaging.DecodeLimit(data, options.MaxPixels)
	if err != nil {
		return nil, err
	}
	if options.Format != "" && options.Format != "auto" && options.Format != img.Format {
		return nil, &imaging.DecodeError{
			Err: fmt.Errorf("content is %s, expected %s", img.Format, options.Format),
		}
	}

	report := a.metadata.Probe(img.Format, data)
	img.Metadata = report.Status

	result, err := a.AnalyzeImage(img, options)
	if err != nil {
		return nil, err
	}

	result.Filename = name
	addMetadataDetails(result, report, options.Verbose)
	result.AnalysisTime = start
	result.AnalysisDuration = time.Since(start)

	return result, nil
}

// AnalyzeImage analyzes a decoded image
func (a *AuthenticityAnalyzer) AnalyzeImage(img *imaging.Image, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	if img == nil {
		return nil, errors.New("nil image provided")
	}

	score, err := scoring.Score(img)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		FileType:        img.Format,
		Width:           img.Width,
		Height:          img.Height,
		Probability:     score.Probability,
		Risk:            scoring.Classify(score.Probability),
		Components:      score.Components,
		Metadata:        img.Metadata,
		Analyzer:        a.Name(),
		Findings:        []models.Finding{},
		Recommendations: []string{},
		Details: map[string]interface{}{
			"width":             img.Width,
			"height":            img.Height,
			"intensityVariance": score.Measurements.IntensityVariance,
			"edgeDensity":       score.Measurements.EdgeDensity,
			"edgePixels":        score.Measurements.EdgePixels,
			"laplacianVariance": score.Measurements.LaplacianVariance,
		},
	}

	explain(result, score)

	return result, nil
}

// explain turns the sub-scores into findings. A finding's confidence is the
// component value, so it is proportional to the points the component adds.
func explain(result *models.AnalysisResult, score *scoring.Result) {
	c := score.Components
	m := score.Measurements

	if c.Noise >= 0.5 {
		result.AddFinding("High pixel intensity variance", c.Noise,
			fmt.Sprintf("variance=%.2f (noise score %.2f, %.2f points)",
				m.IntensityVariance, c.Noise, points(scoring.NoiseWeight, c.Noise)))
	} else if c.Noise < 0.1 {
		result.AddFinding("Flat intensity distribution lowers the probability", c.Noise,
			fmt.Sprintf("variance=%.2f (noise score %.2f, %.2f of %.0f points)",
				m.IntensityVariance, c.Noise, points(scoring.NoiseWeight, c.Noise), scoring.NoiseWeight*100))
	}

	if c.Edge >= 0.5 {
		result.AddFinding("Dense edge structure", c.Edge,
			fmt.Sprintf("edge density=%.4f over %d edge pixels (%.2f points)",
				m.EdgeDensity, m.EdgePixels, points(scoring.EdgeWeight, c.Edge)))
	} else if m.EdgePixels == 0 {
		result.AddFinding("No edges detected lowers the probability", c.Edge,
			fmt.Sprintf("hysteresis thresholds %.0f/%.0f found no discontinuities (0 of %.0f points)",
				scoring.EdgeLowThreshold, scoring.EdgeHighThreshold, scoring.EdgeWeight*100))
	}

	if c.Compression >= 0.7 {
		result.AddFinding("Blurred or heavily compressed content", c.Compression,
			fmt.Sprintf("Laplacian variance=%.2f (compression score %.2f, %.2f points)",
				m.LaplacianVariance, c.Compression, points(scoring.CompressionWeight, c.Compression)))
		result.AddRecommendation("Request a higher quality copy; recompression hides editing traces")
	}

	switch result.Risk {
	case models.RiskHigh:
		result.AddRecommendation("Verify the image with its original source before relying on it")
	case models.RiskMedium:
		result.AddRecommendation("Cross-check the image with a reverse image search")
	}
}

func addMetadataDetails(result *models.AnalysisResult, report extractor.Report, verbose bool) {
	switch report.Status {
	case models.MetadataPresent:
		result.AddFinding("Capture metadata present", 0.2,
			fmt.Sprintf("%s block, %d bytes%s", report.Container, report.Size, formatTags(report.Tags, verbose)))
		if tool := editingSoftware(report.Tags["Software"]); tool != "" {
			result.AddFinding("Metadata names editing or generation software", 0.7,
				fmt.Sprintf("Software=%q matches %s; informational, the probability is unchanged", report.Tags["Software"], tool))
			result.AddRecommendation("Compare the image with an unedited copy from the same source")
		}
	case models.MetadataAbsent:
		result.AddFinding("No capture metadata", 1.0,
			fmt.Sprintf("no EXIF block in %s container (%.2f points)",
				result.FileType, points(scoring.MetadataWeight, scoring.MetadataMissingScore)))
		result.AddRecommendation("Ask for the original file with its capture metadata intact")
	case models.MetadataUnreadable:
		details := "metadata block could not be parsed"
		if report.Err != nil {
			details = report.Err.Error()
		}
		result.AddFinding("Unreadable capture metadata", 1.0, details)
		result.AddRecommendation("Inspect the metadata block manually; it may have been stripped or tampered with")
	}

	if report.Extractor != "" {
		result.Details["metadataExtractor"] = report.Extractor
	}
}

// editorMarkers are Software tag fragments written by editors and image generators
var editorMarkers = []string{
	"photoshop", "lightroom", "gimp", "affinity", "pixelmator", "paint.net",
	"snapseed", "facetune", "stable diffusion", "midjourney", "dall-e", "firefly",
}

func editingSoftware(software string) string {
	lower := strings.ToLower(software)
	for _, marker := range editorMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	return ""
}

func formatTags(tags map[string]string, verbose bool) string {
	if len(tags) == 0 || !verbose {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, tags[k]))
	}
	return ": " + strings.Join(parts, ", ")
}

func points(weight, component float64) float64 {
	return weight * component * 100
}
