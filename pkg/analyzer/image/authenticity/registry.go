package authenticity

import (
	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/extractor"
	"AuthentiGo/pkg/extractor/image/exif"
)

// NewMetadataRegistry returns an extractor registry with every metadata extractor registered
func NewMetadataRegistry() *extractor.Registry {
	registry := extractor.NewRegistry()
	registry.Register(exif.NewEXIFExtractor())
	return registry
}

// RegisterAnalyzers adds the authenticity analyzer to registry
func RegisterAnalyzers(registry *analyzer.Registry) {
	registry.Register(NewAuthenticityAnalyzer(NewMetadataRegistry()))
	// Add more analyzers as they become available
}

// NewDefaultRegistry returns an analyzer registry ready for use
func NewDefaultRegistry() *analyzer.Registry {
	registry := analyzer.NewRegistry()
	RegisterAnalyzers(registry)
	return registry
}
