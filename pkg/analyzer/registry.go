package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"AuthentiGo/pkg/filehandler"
	"AuthentiGo/pkg/models"
)

// ErrNoAnalyzer is returned when no registered analyzer handles a format
var ErrNoAnalyzer = errors.New("no analyzer for format")

// Registry is a container for all available analyzers
type Registry struct {
	analyzers map[string][]FileAnalyzer
	mu        sync.RWMutex
}

// NewRegistry creates a new analyzer registry
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[string][]FileAnalyzer),
	}
}

// Register adds an analyzer to the registry
func (r *Registry) Register(analyzer FileAnalyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, format := range analyzer.SupportedFormats() {
		r.analyzers[format] = append(r.analyzers[format], analyzer)
	}
}

// GetAnalyzersForFormat returns all analyzers that support the given format
func (r *Registry) GetAnalyzersForFormat(format string) []FileAnalyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.analyzers[format]
}

// GetSupportedFormats returns a sorted list of all supported formats
func (r *Registry) GetSupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.analyzers))
	for format := range r.analyzers {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	return formats
}

// AnalyzeFile detects the format of filePath and runs every analyzer for it,
// keeping the result with the highest probability. The first analyzer error
// is returned when no analyzer succeeds.
func (r *Registry) AnalyzeFile(filePath string, options AnalysisOptions) (*models.AnalysisResult, error) {
	format := options.Format
	if format == "" || format == "auto" {
		detected, err := filehandler.DetectFileFormat(filePath)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	return r.run(format, options, func(a FileAnalyzer, opts AnalysisOptions) (*models.AnalysisResult, error) {
		return a.Analyze(filePath, opts)
	})
}

// AnalyzeBytes is AnalyzeFile for content already in memory
func (r *Registry) AnalyzeBytes(name string, data []byte, options AnalysisOptions) (*models.AnalysisResult, error) {
	format := options.Format
	if format == "" || format == "auto" {
		detected, err := filehandler.SniffFormat(data)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	return r.run(format, options, func(a FileAnalyzer, opts AnalysisOptions) (*models.AnalysisResult, error) {
		return a.AnalyzeBytes(name, data, opts)
	})
}

func (r *Registry) run(format string, options AnalysisOptions,
	analyze func(FileAnalyzer, AnalysisOptions) (*models.AnalysisResult, error)) (*models.AnalysisResult, error) {

	analyzers := r.GetAnalyzersForFormat(format)
	if len(analyzers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAnalyzer, format)
	}

	options.Format = format

	var best *models.AnalysisResult
	var firstErr error
	for _, a := range analyzers {
		result, err := analyze(a, options)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", a.Name(), err)
			}
			continue
		}
		if best == nil || result.Probability > best.Probability {
			best = result
		}
	}

	if best == nil {
		return nil, firstErr
	}
	return best, nil
}
