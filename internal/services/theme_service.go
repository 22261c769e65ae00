package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"ccreleases/internal/data/embedded"
	"ccreleases/internal/logger"
	"ccreleases/pkg/releasetypes"
)

// PlainThemeName names the unstyled theme used for non-color output.
const PlainThemeName = "plain"

// ThemeService loads the light and dark timeline themes from embedded YAML.
type ThemeService struct {
	initialized bool
	themes      map[string]*Theme
}

// Theme holds the lipgloss styles for every timeline element.
type Theme struct {
	Name         string
	GlamourStyle string
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Version      lipgloss.Style
	Date         lipgloss.Style
	Entry        lipgloss.Style
	Muted        lipgloss.Style
	Accent       lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Rule         lipgloss.Style
	plain        bool
}

// NewThemeService creates a new ThemeService instance with themes loaded from YAML.
func NewThemeService() *ThemeService {
	service := &ThemeService{
		themes: make(map[string]*Theme),
	}
	service.loadThemesFromYAML()
	return service
}

// Name returns the service name "theme" for registration.
func (t *ThemeService) Name() string {
	return "theme"
}

// Initialize sets up the ThemeService for operation.
func (t *ThemeService) Initialize() error {
	t.initialized = true
	return nil
}

func (t *ThemeService) loadThemesFromYAML() {
	themeFiles := map[releasetypes.ThemeName][]byte{
		releasetypes.ThemeDark:  embedded.DarkThemeData,
		releasetypes.ThemeLight: embedded.LightThemeData,
	}

	for themeName, themeData := range themeFiles {
		theme, err := t.loadThemeFile(themeData)
		if err != nil {
			logger.Error("Failed to load theme", "theme", themeName, "error", err)
			t.themes[themeName.String()] = newPlainTheme(themeName.String())
			continue
		}
		t.themes[themeName.String()] = theme
	}

	t.themes[PlainThemeName] = newPlainTheme(PlainThemeName)
}

func (t *ThemeService) loadThemeFile(data []byte) (*Theme, error) {
	var themeFile releasetypes.ThemeFile
	if err := yaml.Unmarshal(data, &themeFile); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if themeFile.Name == "" {
		return nil, fmt.Errorf("theme file has no name")
	}
	return convertThemeConfig(&themeFile.ThemeConfig), nil
}

func convertThemeConfig(config *releasetypes.ThemeConfig) *Theme {
	s := config.Styles
	return &Theme{
		Name:         config.Name,
		GlamourStyle: config.GlamourStyle,
		Title:        createStyle(s.Title),
		Subtitle:     createStyle(s.Subtitle),
		Version:      createStyle(s.Version),
		Date:         createStyle(s.Date),
		Entry:        createStyle(s.Entry),
		Muted:        createStyle(s.Muted),
		Accent:       createStyle(s.Accent),
		Error:        createStyle(s.Error),
		Success:      createStyle(s.Success),
		Warning:      createStyle(s.Warning),
		Rule:         createStyle(s.Rule),
	}
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func createStyle(config releasetypes.StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}
	if config.Faint != nil && *config.Faint {
		style = style.Faint(true)
	}

	return style
}

// parseColor parses a color value that can be a string or a {light, dark} map.
func parseColor(colorValue interface{}) lipgloss.TerminalColor {
	switch v := colorValue.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
		return nil
	default:
		return nil
	}
}

func newPlainTheme(name string) *Theme {
	return &Theme{
		Name:         name,
		GlamourStyle: "notty",
		Title:        lipgloss.NewStyle(),
		Subtitle:     lipgloss.NewStyle(),
		Version:      lipgloss.NewStyle(),
		Date:         lipgloss.NewStyle(),
		Entry:        lipgloss.NewStyle(),
		Muted:        lipgloss.NewStyle(),
		Accent:       lipgloss.NewStyle(),
		Error:        lipgloss.NewStyle(),
		Success:      lipgloss.NewStyle(),
		Warning:      lipgloss.NewStyle(),
		Rule:         lipgloss.NewStyle(),
		plain:        true,
	}
}

// GetAvailableThemes returns the theme names in alphabetical order.
func (t *ThemeService) GetAvailableThemes() []string {
	if !t.initialized {
		return []string{}
	}

	names := make([]string, 0, len(t.themes))
	for name := range t.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTheme returns a specific theme by name.
func (t *ThemeService) GetTheme(name string) (*Theme, bool) {
	if !t.initialized {
		return nil, false
	}
	theme, exists := t.themes[name]
	return theme, exists
}

// GetThemeByName resolves a theme case-insensitively. Unknown names get the plain theme.
func (t *ThemeService) GetThemeByName(name string) *Theme {
	if !t.initialized {
		return newPlainTheme(PlainThemeName)
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	if theme, ok := t.themes[normalized]; ok {
		return theme
	}

	logger.Debug("Invalid theme requested, using plain theme", "theme", name, "available", t.GetAvailableThemes())
	return t.themes[PlainThemeName]
}

// ForProfile returns the named theme, or the plain theme when the color profile cannot show color.
func (t *ThemeService) ForProfile(name releasetypes.ThemeName, profile termenv.Profile) *Theme {
	if profile == termenv.Ascii {
		return t.GetThemeByName(PlainThemeName)
	}
	return t.GetThemeByName(name.String())
}

// IsPlain reports whether the theme renders without color.
func (th *Theme) IsPlain() bool {
	return th.plain
}

// CategoryStyle returns the heading style for a category, colored with its taxonomy color.
func (th *Theme) CategoryStyle(category releasetypes.Category) lipgloss.Style {
	if th.plain {
		return lipgloss.NewStyle()
	}
	info := releasetypes.LookupCategory(category)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Bold(true)
}

// CreateList creates a new bullet list with theme styling applied.
func (th *Theme) CreateList() *list.List {
	return list.New().
		Enumerator(list.Bullet).
		EnumeratorStyle(th.Muted.PaddingRight(1)).
		ItemStyle(th.Entry)
}

// CreateSimpleList creates a simple list from string array.
func (th *Theme) CreateSimpleList(items []string) *list.List {
	l := th.CreateList()
	for _, item := range items {
		l.Item(item)
	}
	return l
}

// GetGlobalThemeService returns the theme service from the global registry.
func GetGlobalThemeService() (*ThemeService, error) {
	return getGlobalService[*ThemeService]("theme")
}
