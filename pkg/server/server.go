package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/filehandler"
	"AuthentiGo/pkg/imaging"
	"AuthentiGo/pkg/models"
)

/*
Summary of this file:
- Server exposes the upload page, the JSON analysis API, a health probe and metrics.
- Uploads are stored under the configured directory with generated names, scored
  through the analyzer registry and removed afterwards unless retention is on.
- The upload directory is not created here; callers run filehandler.EnsureDir first.
*/

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Server wraps the HTTP server components for AuthentiGo.
type Server struct {
	mux      *http.ServeMux
	cfg      *config.Config
	registry *analyzer.Registry
	metrics  *Metrics
	logger   *slog.Logger
}

// New wires the routes. A nil logger falls back to slog.Default().
func New(cfg *config.Config, registry *analyzer.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		registry: registry,
		metrics:  NewMetrics(),
		logger:   logger,
	}

	// Routes
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /{$}", s.handleUpload)
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	return s
}

// Handler returns the routes wrapped in request logging
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.logger)(s.mux)
}

// Start serves on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("AuthentiGo listening", "addr", s.cfg.Server.Addr, "upload_dir", s.cfg.Server.UploadDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// --- Handlers ---

type pageData struct {
	Result      *models.AnalysisResult
	Error       string
	MaxUploadMB int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if errors.Is(err, http.ErrMissingFile) {
		// Nothing chosen: show the form again
		s.renderPage(w, http.StatusOK, pageData{})
		return
	}
	if err != nil {
		status, msg := s.uploadError(err)
		s.renderPage(w, status, pageData{Error: msg})
		return
	}

	result, err := s.analyzeUpload(r.Context(), name, data)
	if err != nil {
		status, msg := s.analysisError(err)
		s.renderPage(w, status, pageData{Error: msg})
		return
	}

	s.renderPage(w, http.StatusOK, pageData{Result: result})
}

type analyzeResponse struct {
	Filename    string                 `json:"filename"`
	Format      string                 `json:"format"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	Probability float64                `json:"probability"`
	Risk        models.RiskLevel       `json:"risk"`
	Components  models.ScoreComponents `json:"components"`
	Metadata    models.MetadataStatus  `json:"metadata"`
	Findings    []models.Finding       `json:"findings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		status, msg := s.uploadError(err)
		s.writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	result, err := s.analyzeUpload(r.Context(), name, data)
	if err != nil {
		status, msg := s.analysisError(err)
		s.writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Filename:    result.Filename,
		Format:      result.FileType,
		Width:       result.Width,
		Height:      result.Height,
		Probability: result.Probability,
		Risk:        result.Risk,
		Components:  result.Components,
		Metadata:    result.Metadata,
		Findings:    result.Findings,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Upload plumbing ---

// readUpload returns the client file name and content of the "image" field,
// or the raw body when the request is not multipart.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(limit); err != nil {
			return "", nil, err
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("image")
		if err != nil {
			return "", nil, err
		}
		defer file.Close()

		data, err := filehandler.ReadLimited(file, limit)
		if err != nil {
			return "", nil, err
		}
		if len(data) == 0 {
			return "", nil, http.ErrMissingFile
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, http.ErrMissingFile
	}
	return "upload", data, nil
}

// analyzeUpload stores the upload, scores it and records metrics
func (s *Server) analyzeUpload(ctx context.Context, name string, data []byte) (*models.AnalysisResult, error) {
	start := time.Now()

	stored, err := filehandler.SaveUpload(s.cfg.Server.UploadDir, name, data)
	if err != nil {
		s.metrics.ObserveFailure("storage")
		return nil, err
	}
	if !s.cfg.Server.Retain() {
		defer os.Remove(stored)
	}

	result, err := s.registry.AnalyzeBytes(name, data, analyzer.AnalysisOptions{
		MaxFileBytes: s.cfg.Analysis.MaxFileBytes,
		MaxPixels:    s.cfg.Analysis.MaxPixels,
	})
	if err != nil {
		reason := failureReason(err)
		s.metrics.ObserveFailure(reason)
		recordOutcome(ctx, "failure", reason)
		s.logger.WarnContext(ctx, "analysis failed", "file", name, "stored", stored, "error", err)
		return nil, err
	}

	s.metrics.ObserveResult(result, time.Since(start))
	recordOutcome(ctx, "format", result.FileType, "probability", result.Probability, "risk", result.Risk.String())
	s.logger.InfoContext(ctx, "image analyzed",
		"file", name,
		"stored", stored,
		"format", result.FileType,
		"probability", result.Probability,
		"risk", result.Risk.String(),
		"metadata", result.Metadata.String(),
	)
	return result, nil
}

// failureReason labels an analysis error for the failures counter
func failureReason(err error) string {
	switch {
	case errors.Is(err, imaging.ErrTooManyPixels):
		return "too_many_pixels"
	case imaging.IsAnalysisError(err):
		return "undecodable"
	case unsupported(err):
		return "unsupported"
	default:
		return "internal"
	}
}

func unsupported(err error) bool {
	return errors.Is(err, filehandler.ErrUnsupportedFormat) || errors.Is(err, analyzer.ErrNoAnalyzer)
}

func (s *Server) uploadError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, filehandler.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge,
			fmt.Sprintf("image is larger than %d MB", s.cfg.Server.MaxUploadBytes>>20)
	case errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest, "no image uploaded"
	default:
		return http.StatusBadRequest, "malformed upload: " + err.Error()
	}
}

func (s *Server) analysisError(err error) (int, string) {
	if imaging.IsAnalysisError(err) || unsupported(err) {
		return http.StatusUnprocessableEntity, "cannot analyze this image: " + err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.MaxUploadMB = s.cfg.Server.MaxUploadBytes >> 20

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write JSON response", "status", status, "error", err)
	}
}
