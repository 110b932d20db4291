package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthentiGo/pkg/models"
)

func TestAnalyzeFilesKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("stub", 75, "png"))

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 9; i++ {
		name := fmt.Sprintf("img%d.png", i)
		if i == 4 {
			name = "bad.png"
		}
		paths = append(paths, writePNG(t, dir, name))
	}
	paths = append(paths, filepath.Join(dir, "missing.png"))

	outcomes, err := AnalyzeFiles(context.Background(), r, paths, 3, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, outcomes, len(paths))

	for i, o := range outcomes {
		assert.Equal(t, paths[i], o.Path)
		switch i {
		case 4, 9:
			assert.Error(t, o.Err)
		default:
			require.NoError(t, o.Err)
			assert.Equal(t, paths[i], o.Result.Filename)
		}
	}

	s := Summarize(outcomes)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 8, s.ByRisk[models.RiskHigh])
	assert.Len(t, s.High, 8)
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("stub", 10, "png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writePNG(t, t.TempDir(), "a.png")
	outcomes, err := AnalyzeFiles(ctx, r, []string{path, path}, 0, AnalysisOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, Summarize(outcomes).Total)
}

func TestSummarizeMixedRisk(t *testing.T) {
	outcomes := []FileOutcome{
		{Path: "a", Result: &models.AnalysisResult{Risk: models.RiskLow}},
		{Path: "b", Result: &models.AnalysisResult{Risk: models.RiskMedium}},
		{Path: "c", Result: &models.AnalysisResult{Risk: models.RiskHigh, Filename: "c"}},
		{Path: "d", Err: fmt.Errorf("boom")},
	}
	s := Summarize(outcomes)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.ByRisk[models.RiskLow])
	assert.Equal(t, 1, s.ByRisk[models.RiskMedium])
	require.Len(t, s.High, 1)
	assert.Equal(t, "c", s.High[0].Filename)
}
