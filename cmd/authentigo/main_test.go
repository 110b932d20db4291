package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/models"
	"AuthentiGo/pkg/testutil"
)

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Analysis.Workers = 2
	return cfg
}

func TestRunAnalyzeDirectoryJSON(t *testing.T) {
	human := quiet(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "flat.png"),
		testutil.EncodePNG(t, testutil.Uniform(16, 16, 50)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("nope"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), testConfig(), analyzeFlags{dir: dir, format: "auto", json: true}, &stdout)
	require.NoError(t, err)

	var got []jsonOutcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, filepath.Join(dir, "broken.jpg"), got[0].Path)
	assert.NotEmpty(t, got[0].Error)
	assert.Nil(t, got[0].Result)

	assert.Equal(t, filepath.Join(dir, "flat.png"), got[1].Path)
	require.NotNil(t, got[1].Result)
	assert.Equal(t, 35.0, got[1].Result.Probability)

	assert.Contains(t, human.String(), "Analysis Summary")
}

func TestRunAnalyzeAllFailing(t *testing.T) {
	quiet(t)
	p := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(p, []byte("garbage"), 0644))

	err := runAnalyze(context.Background(), testConfig(), analyzeFlags{file: p, format: "auto"}, io.Discard)
	assert.Error(t, err)
}

func TestRunAnalyzeMissingFile(t *testing.T) {
	quiet(t)
	err := runAnalyze(context.Background(), testConfig(),
		analyzeFlags{file: filepath.Join(t.TempDir(), "missing.png")}, io.Discard)
	assert.Error(t, err)
}

func TestCollectInputsDownloadsURLs(t *testing.T) {
	quiet(t)
	png := testutil.EncodePNG(t, testutil.Uniform(4, 4, 1))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	tmp := t.TempDir()
	urlFile := filepath.Join(tmp, "urls.txt")
	body := "# images\n\n" + srv.URL + "/img.png\n" + srv.URL + "/missing.png\nftp://nope\n"
	require.NoError(t, os.WriteFile(urlFile, []byte(body), 0644))

	paths, err := collectInputs(context.Background(), testConfig(), analyzeFlags{
		urlFile:   urlFile,
		outputDir: filepath.Join(tmp, "out"),
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, ".png", filepath.Ext(paths[0]))
	assert.Equal(t, filepath.Join(tmp, "out", "downloads"), filepath.Dir(paths[0]))
}

func TestFormatsCommand(t *testing.T) {
	var buf bytes.Buffer
	formatsCmd.SetOut(&buf)
	formatsCmd.Run(formatsCmd, nil)

	assert.Contains(t, buf.String(), "- jpeg: Authenticity Analyzer")
	assert.Contains(t, buf.String(), "- webp: Authenticity Analyzer")
}

func TestDisplayLeadsWithStrongestFinding(t *testing.T) {
	buf := quiet(t)
	result := &models.AnalysisResult{Filename: "a.png", FileType: "png", Probability: 61.5, Risk: models.RiskMedium}
	result.AddFinding("Low edge density", 0.4, "")
	result.AddFinding("Blurred or heavily compressed content", 0.9, "")

	displayAnalysisResult(result, false)
	assert.Contains(t, buf.String(), "Strongest signal: Blurred or heavily compressed content (0.90)")

	buf.Reset()
	displayAnalysisResult(&models.AnalysisResult{Filename: "b.png"}, false)
	assert.NotContains(t, buf.String(), "Strongest signal")
}
