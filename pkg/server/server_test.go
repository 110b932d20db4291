package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthentiGo/pkg/analyzer/image/authenticity"
	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/logging"
	"AuthentiGo/pkg/testutil"
)

func newTestServer(t *testing.T, retain bool) (*Server, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.MaxUploadBytes = 1 << 20
	cfg.Server.RetainUploads = &retain
	return New(cfg, authenticity.NewDefaultRegistry(), logging.Discard()), cfg
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postImage(t *testing.T, s *Server, path, filename string, data []byte) *httptest.ResponseRecorder {
	body, ct := multipartBody(t, "image", filename, data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	return do(t, s, req)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIndexShowsForm(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="image"`)
	assert.NotContains(t, rec.Body.String(), "Risk level")
}

func TestUploadRendersProbabilityAndRisk(t *testing.T) {
	s, cfg := newTestServer(t, true)
	png := testutil.EncodePNG(t, testutil.Uniform(24, 24, 128))

	rec := postImage(t, s, "/", "photo.png", png)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "35.00%")
	assert.Contains(t, rec.Body.String(), `<span class="LOW">LOW</span>`)

	entries, err := os.ReadDir(cfg.Server.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
	assert.NotEqual(t, "photo.png", entries[0].Name())
}

func TestUploadWithoutFileRerendersForm(t *testing.T) {
	s, _ := newTestServer(t, true)
	body, ct := multipartBody(t, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)

	rec := do(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Risk level")
}

func TestUploadUndecodableImage(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := postImage(t, s, "/", "fake.png", []byte("this is not an image at all"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot analyze this image")
}

func TestAPIAnalyzeMultipart(t *testing.T) {
	s, _ := newTestServer(t, true)
	jpg := testutil.EncodeJPEG(t, testutil.Uniform(16, 16, 90))
	tagged := testutil.WithJPEGExif(jpg, testutil.MinimalTIFF("Canon"))

	rec := postImage(t, s, "/api/v1/analyze", "cam.jpg", tagged)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	out := decodeJSON(t, rec)
	assert.Equal(t, "cam.jpg", out["filename"])
	assert.Equal(t, "jpeg", out["format"])
	assert.Equal(t, 23.0, out["probability"])
	assert.Equal(t, "LOW", out["risk"])
	assert.Equal(t, "present", out["metadata"])

	components, ok := out["components"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.2, components["metadata"])
	assert.NotEmpty(t, out["findings"])
}

func TestAPIAnalyzeRawBody(t *testing.T) {
	s, _ := newTestServer(t, false)
	png := testutil.EncodePNG(t, testutil.Uniform(8, 8, 3))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(png))
	req.Header.Set("Content-Type", "image/png")
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeJSON(t, rec)
	assert.Equal(t, 35.0, out["probability"])
	assert.Equal(t, "absent", out["metadata"])
}

func TestAPIErrors(t *testing.T) {
	s, _ := newTestServer(t, true)

	t.Run("missing image", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
		rec := do(t, s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no image uploaded", decodeJSON(t, rec)["error"])
	})

	t.Run("undecodable", func(t *testing.T) {
		rec := postImage(t, s, "/api/v1/analyze", "x.bin", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeJSON(t, rec)["error"], "cannot analyze this image")
	})

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte{0xFF}, (1<<20)+10)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(big))
		req.Header.Set("Content-Type", "application/octet-stream")
		rec := do(t, s, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestUploadsRemovedWhenNotRetained(t *testing.T) {
	s, cfg := newTestServer(t, false)
	png := testutil.EncodePNG(t, testutil.Uniform(8, 8, 3))

	rec := postImage(t, s, "/api/v1/analyze", "a.png", png)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(cfg.Server.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsCountAnalyses(t *testing.T) {
	s, _ := newTestServer(t, false)
	png := testutil.EncodePNG(t, testutil.Uniform(8, 8, 3))
	require.Equal(t, http.StatusOK, postImage(t, s, "/api/v1/analyze", "a.png", png).Code)
	postImage(t, s, "/api/v1/analyze", "b.png", []byte("garbage"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `authentigo_analyses_total{risk="LOW"} 1`)
	assert.Contains(t, text, `authentigo_analyses_total{risk="HIGH"} 0`)
	assert.Contains(t, text, `authentigo_analysis_failures_total{reason="unsupported"} 1`)
	assert.Contains(t, text, "authentigo_probability_bucket")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, true)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
