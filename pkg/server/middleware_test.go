package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/analyzer/image/authenticity"
	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/imaging"
	"AuthentiGo/pkg/testutil"
)

func jsonLogServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.MaxUploadBytes = 1 << 20
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(cfg, authenticity.NewDefaultRegistry(), logger), &buf
}

func requestLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "request" {
			return entry
		}
	}
	t.Fatal("no request log line")
	return nil
}

func TestRequestLogCarriesAnalysisOutcome(t *testing.T) {
	s, buf := jsonLogServer(t)
	png := testutil.EncodePNG(t, testutil.Uniform(16, 16, 40))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(png))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entry := requestLine(t, buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "/api/v1/analyze", entry["path"])
	assert.Equal(t, float64(len(png)), entry["upload_bytes"])
	assert.Equal(t, float64(rec.Body.Len()), entry["response_bytes"])
	assert.Equal(t, "png", entry["format"])
	assert.Equal(t, 35.0, entry["probability"])
	assert.Equal(t, "LOW", entry["risk"])
	assert.NotContains(t, entry, "failure")
}

func TestRequestLogCarriesFailureReason(t *testing.T) {
	s, buf := jsonLogServer(t)

	rec := postImage(t, s, "/api/v1/analyze", "b.png", []byte("garbage"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	entry := requestLine(t, buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "unsupported", entry["failure"])
	assert.NotContains(t, entry, "risk")
}

func TestFailureReasons(t *testing.T) {
	tooMany := &imaging.DecodeError{Err: fmt.Errorf("%w: 9x9", imaging.ErrTooManyPixels)}
	assert.Equal(t, "too_many_pixels", failureReason(tooMany))
	assert.Equal(t, "undecodable", failureReason(&imaging.ConversionError{Reason: "empty"}))
	assert.Equal(t, "unsupported", failureReason(fmt.Errorf("x: %w", analyzer.ErrNoAnalyzer)))
	assert.Equal(t, "internal", failureReason(assert.AnError))

	s, _ := jsonLogServer(t)
	status, _ := s.analysisError(fmt.Errorf("analyze: %w", tooMany))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, msg := s.analysisError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", msg)
}
