package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"ccreleases/internal/dates"
	"ccreleases/internal/logger"
	"ccreleases/pkg/releasetypes"
)

const defaultWordWrap = 80

// MarkdownService renders changelog markdown for the terminal using Glamour.
type MarkdownService struct {
	initialized bool
	renderer    *glamour.TermRenderer
	wordWrap    int
}

// NewMarkdownService creates a new MarkdownService instance.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{
		wordWrap: defaultWordWrap,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize sets up the MarkdownService with default configuration.
func (m *MarkdownService) Initialize() error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully")
	return nil
}

// Render renders markdown content to ANSI terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// RenderWithStyle renders markdown content with a specific Glamour style
// ("dark", "light", "notty", "ascii"). Unknown styles fall back to the default renderer.
func (m *MarkdownService) RenderWithStyle(markdown string, style string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(m.wordWrap),
	)
	if err != nil {
		logger.Debug("Failed to create renderer with style, falling back to default", "style", style, "error", err)
		return m.Render(markdown)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown with style '%s': %w", style, err)
	}
	return rendered, nil
}

// RenderWithTheme renders markdown with the Glamour style named by the theme.
func (m *MarkdownService) RenderWithTheme(markdown string, theme *Theme) (string, error) {
	style := "auto"
	if theme != nil && theme.GlamourStyle != "" {
		style = theme.GlamourStyle
	}
	if style == "auto" {
		return m.Render(markdown)
	}
	return m.RenderWithStyle(markdown, style)
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}
	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}

	m.renderer = renderer
	m.wordWrap = width
	logger.Debug("MarkdownService word wrap updated", "width", width)
	return nil
}

// ReleaseMarkdown converts a release back into changelog markdown that the parser reads back.
// Dates convertible to YYYY-MM-DD become a _Released_ line; others are kept as plain text.
func ReleaseMarkdown(release releasetypes.Release) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", release.Version)
	if release.Date != "" {
		if iso := dates.ToISODate(release.Date); dates.IsISODate(iso) {
			fmt.Fprintf(&b, "_Released %s_\n\n", iso)
		} else {
			fmt.Fprintf(&b, "%s\n\n", release.Date)
		}
	}
	for _, entry := range release.Entries {
		fmt.Fprintf(&b, "- %s\n", entry.Content)
	}
	return b.String()
}

// ReleasesMarkdown converts releases into a single changelog document.
func ReleasesMarkdown(releases []releasetypes.Release) string {
	parts := make([]string, len(releases))
	for i, release := range releases {
		parts[i] = ReleaseMarkdown(release)
	}
	return "# Changelog\n\n" + strings.Join(parts, "\n")
}

// GetGlobalMarkdownService returns the markdown service from the global registry.
func GetGlobalMarkdownService() (*MarkdownService, error) {
	return getGlobalService[*MarkdownService]("markdown")
}
