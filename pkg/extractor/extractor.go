package extractor

import (
	"AuthentiGo/pkg/models"
)

// Report describes what an extractor found in an image container
type Report struct {
	Status    models.MetadataStatus
	Extractor string
	Container string // block the metadata was read from, e.g. "APP1" or "eXIf"
	Size      int
	Tags      map[string]string
	Err       error // why the block was unreadable
}

// MetadataExtractor is the interface that all metadata extractors must implement
type MetadataExtractor interface {
	// CanExtract checks if this extractor can handle the given format
	CanExtract(format string) bool

	// Extract probes raw file bytes of the given format for capture metadata.
	// Failures are reported through Report.Status, never as a panic or error return.
	Extract(format string, data []byte) Report

	// Name returns the name of the extractor
	Name() string

	// SupportedFormats returns formats this extractor supports
	SupportedFormats() []string
}

// BaseExtractor provides common functionality for extractors
type BaseExtractor struct {
	name    string
	formats []string
}

// NewBaseExtractor creates a new BaseExtractor
func NewBaseExtractor(name string, formats []string) BaseExtractor {
	return BaseExtractor{
		name:    name,
		formats: formats,
	}
}

// Name returns the extractor name
func (b *BaseExtractor) Name() string {
	return b.name
}

// SupportedFormats returns the supported formats
func (b *BaseExtractor) SupportedFormats() []string {
	return b.formats
}

// CanExtract checks if the extractor supports the given format
func (b *BaseExtractor) CanExtract(format string) bool {
	for _, f := range b.formats {
		if f == format {
			return true
		}
	}
	return false
}

// Absent builds a report for a container without metadata
func (b *BaseExtractor) Absent() Report {
	return Report{Status: models.MetadataAbsent, Extractor: b.name}
}

// Unreadable builds a report for a container whose metadata could not be parsed
func (b *BaseExtractor) Unreadable(err error) Report {
	return Report{Status: models.MetadataUnreadable, Extractor: b.name, Err: err}
}
