package extractor

import (
	"sort"
	"sync"

	"AuthentiGo/pkg/models"
)

// Registry is a container for all available extractors
type Registry struct {
	extractors map[string][]MetadataExtractor
	mu         sync.RWMutex
}

// NewRegistry creates a new extractor registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string][]MetadataExtractor),
	}
}

// Register adds an extractor to the registry
func (r *Registry) Register(extractor MetadataExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, format := range extractor.SupportedFormats() {
		r.extractors[format] = append(r.extractors[format], extractor)
	}
}

// GetExtractorsForFormat returns all extractors that support the given format
func (r *Registry) GetExtractorsForFormat(format string) []MetadataExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.extractors[format]
}

// GetSupportedFormats returns all formats that have registered extractors, sorted
func (r *Registry) GetSupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.extractors))
	for format := range r.extractors {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	return formats
}

// Probe runs every extractor registered for format. The first readable
// metadata block wins; otherwise an unreadable block beats absence.
// Formats without a metadata container report MetadataAbsent.
func (r *Registry) Probe(format string, data []byte) Report {
	var unreadable *Report

	for _, e := range r.GetExtractorsForFormat(format) {
		rep := e.Extract(format, data)
		switch rep.Status {
		case models.MetadataPresent:
			return rep
		case models.MetadataUnreadable:
			if unreadable == nil {
				unreadable = &rep
			}
		}
	}

	if unreadable != nil {
		return *unreadable
	}
	return Report{Status: models.MetadataAbsent}
}
