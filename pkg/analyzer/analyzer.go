package analyzer

import (
	"AuthentiGo/pkg/imaging"
	"AuthentiGo/pkg/models"
)

/*
Analyzer.go contains the interfaces and base implementation for file analyzers.
FileAnalyzer: interface every analyzer implements; it works from a path or from raw bytes.
ImageAnalyzer: extends FileAnalyzer with analysis of an already decoded image.
BaseAnalyzer: common name, description and supported format bookkeeping.
AnalysisOptions: per-call options such as the forced format and the size cap.
*/

// AnalysisOptions holds configuration options for analysis
type AnalysisOptions struct {
	Verbose      bool
	Format       string // forced format, "" or "auto" to detect
	MaxFileBytes int64  // size cap for files read from disk, 0 for the default
	MaxPixels    int64  // raster size cap checked before decoding, 0 for the default
}

// FileAnalyzer is the interface that all file analyzers must implement
type FileAnalyzer interface {
	// CanAnalyze checks if this analyzer can handle the given format
	CanAnalyze(format string) bool

	// Analyze performs analysis on a file and returns results
	Analyze(filePath string, options AnalysisOptions) (*models.AnalysisResult, error)

	// AnalyzeBytes performs analysis on raw file content
	AnalyzeBytes(name string, data []byte, options AnalysisOptions) (*models.AnalysisResult, error)

	// Name returns the name of the analyzer
	Name() string

	// Description returns a detailed description of what the analyzer does
	Description() string

	// SupportedFormats returns a list of file formats this analyzer supports
	SupportedFormats() []string
}

// ImageAnalyzer is an interface for analyzers that work with decoded images
type ImageAnalyzer interface {
	FileAnalyzer

	// AnalyzeImage performs analysis directly on a decoded image
	AnalyzeImage(img *imaging.Image, options AnalysisOptions) (*models.AnalysisResult, error)
}

// BaseAnalyzer provides common functionality for analyzers
type BaseAnalyzer struct {
	name        string
	description string
	formats     []string
}

// NewBaseAnalyzer creates a new BaseAnalyzer
func NewBaseAnalyzer(name, description string, formats []string) BaseAnalyzer {
	return BaseAnalyzer{
		name:        name,
		description: description,
		formats:     formats,
	}
}

// Name returns the analyzer name
func (b *BaseAnalyzer) Name() string {
	return b.name
}

// Description returns the analyzer description
func (b *BaseAnalyzer) Description() string {
	return b.description
}

// SupportedFormats returns the supported formats
func (b *BaseAnalyzer) SupportedFormats() []string {
	return b.formats
}

// CanAnalyze checks if the analyzer supports the given format
func (b *BaseAnalyzer) CanAnalyze(format string) bool {
	for _, f := range b.formats {
		if f == format {
			return true
		}
	}
	return false
}
