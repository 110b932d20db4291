package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthentiGo/pkg/models"
	"AuthentiGo/pkg/scoring"
	"AuthentiGo/pkg/testutil"
)

// stubAnalyzer returns a fixed probability, or fails for names containing "bad"
type stubAnalyzer struct {
	BaseAnalyzer
	probability float64
}

func newStub(name string, probability float64, formats ...string) *stubAnalyzer {
	return &stubAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(name, "stub", formats),
		probability:  probability,
	}
}

func (s *stubAnalyzer) Analyze(filePath string, options AnalysisOptions) (*models.AnalysisResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeBytes(filePath, data, options)
}

func (s *stubAnalyzer) AnalyzeBytes(name string, _ []byte, options AnalysisOptions) (*models.AnalysisResult, error) {
	if strings.Contains(name, "bad") {
		return nil, errors.New("stub failure")
	}
	return &models.AnalysisResult{
		Filename:    name,
		FileType:    options.Format,
		Probability: s.probability,
		Risk:        scoring.Classify(s.probability),
		Analyzer:    s.Name(),
	}, nil
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, testutil.EncodePNG(t, testutil.Uniform(4, 4, 9)), 0644))
	return p
}

func TestRegistryFormats(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("a", 10, "png", "jpeg"))
	r.Register(newStub("b", 20, "png"))

	assert.Equal(t, []string{"jpeg", "png"}, r.GetSupportedFormats())
	assert.Len(t, r.GetAnalyzersForFormat("png"), 2)
	assert.Empty(t, r.GetAnalyzersForFormat("gif"))
}

func TestAnalyzeFileKeepsHighestProbability(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("low", 12.5, "png"))
	r.Register(newStub("high", 80, "png"))

	path := writePNG(t, t.TempDir(), "img.png")
	res, err := r.AnalyzeFile(path, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, "high", res.Analyzer)
	assert.Equal(t, "png", res.FileType)
	assert.Equal(t, models.RiskHigh, res.Risk)
}

func TestAnalyzeFileWithoutAnalyzer(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("jpeg only", 10, "jpeg"))

	path := writePNG(t, t.TempDir(), "img.png")
	_, err := r.AnalyzeFile(path, AnalysisOptions{})
	assert.ErrorIs(t, err, ErrNoAnalyzer)
}

func TestAnalyzeBytesSniffsContent(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("png", 50, "png"))

	data := testutil.EncodePNG(t, testutil.Uniform(2, 2, 0))
	res, err := r.AnalyzeBytes("upload", data, AnalysisOptions{Format: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "png", res.FileType)
	assert.Equal(t, models.RiskMedium, res.Risk)
}

func TestAnalyzeErrorsNameTheAnalyzer(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("failing", 10, "png"))

	path := writePNG(t, t.TempDir(), "bad.png")
	_, err := r.AnalyzeFile(path, AnalysisOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: stub failure")
}
