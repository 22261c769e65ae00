package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"ccreleases/pkg/releasetypes"
)

// ExportFormat names a serialization supported by ExportService.
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportYAML     ExportFormat = "yaml"
	ExportMarkdown ExportFormat = "markdown"
)

// ParseExportFormat accepts json, yaml/yml and markdown/md case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	case "markdown", "md":
		return ExportMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected json, yaml or markdown)", s)
	}
}

// ExportService writes parsed releases in machine-readable form.
type ExportService struct {
	initialized bool
}

// NewExportService creates a new ExportService instance.
func NewExportService() *ExportService {
	return &ExportService{}
}

// Name returns the service name "export" for registration.
func (e *ExportService) Name() string {
	return "export"
}

// Initialize sets up the ExportService for operation.
func (e *ExportService) Initialize() error {
	e.initialized = true
	return nil
}

// Export writes releases to w in the given format.
func (e *ExportService) Export(w io.Writer, releases []releasetypes.Release, format ExportFormat) error {
	if releases == nil {
		releases = []releasetypes.Release{}
	}

	switch format {
	case ExportJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(releases); err != nil {
			return fmt.Errorf("failed to encode releases as JSON: %w", err)
		}
	case ExportYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(releases); err != nil {
			return fmt.Errorf("failed to encode releases as YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to finish YAML output: %w", err)
		}
	case ExportMarkdown:
		if _, err := io.WriteString(w, ReleasesMarkdown(releases)); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

// GetGlobalExportService returns the export service from the global registry.
func GetGlobalExportService() (*ExportService, error) {
	return getGlobalService[*ExportService]("export")
}
