// Package releasetypes defines theme-related data structures for the timeline renderer.
package releasetypes

// ThemeName identifies one of the two supported color schemes.
type ThemeName string

const (
	// ThemeLight is the light color scheme
	ThemeLight ThemeName = "light"

	// ThemeDark is the dark color scheme
	ThemeDark ThemeName = "dark"
)

// DefaultTheme is used when neither a stored preference nor the terminal background decides.
const DefaultTheme = ThemeDark

// String returns the string representation of a ThemeName.
func (t ThemeName) String() string {
	return string(t)
}

// IsValid checks if a theme name is supported.
func (t ThemeName) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme.
func (t ThemeName) Toggle() ThemeName {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeConfig represents a theme configuration loaded from YAML.
type ThemeConfig struct {
	// Name is the theme identifier ("light" or "dark")
	Name string `yaml:"name" json:"name"`

	// Description provides a brief description of the theme
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// GlamourStyle names the glamour style used for raw markdown rendering
	GlamourStyle string `yaml:"glamour_style,omitempty" json:"glamour_style,omitempty"`

	// Styles contains the color and style definitions for different semantic elements
	Styles ThemeStyles `yaml:"styles" json:"styles"`
}

// ThemeStyles defines the styling configuration for the timeline elements.
type ThemeStyles struct {
	// Title style for the page title
	Title StyleConfig `yaml:"title" json:"title"`

	// Subtitle style for the tagline under the title
	Subtitle StyleConfig `yaml:"subtitle" json:"subtitle"`

	// Version style for release version headers
	Version StyleConfig `yaml:"version" json:"version"`

	// Date style for release dates
	Date StyleConfig `yaml:"date" json:"date"`

	// Entry style for entry text
	Entry StyleConfig `yaml:"entry" json:"entry"`

	// Muted style for secondary text and hints
	Muted StyleConfig `yaml:"muted" json:"muted"`

	// Accent style for search queries and counts
	Accent StyleConfig `yaml:"accent" json:"accent"`

	// Error style for error messages
	Error StyleConfig `yaml:"error" json:"error"`

	// Success style for confirmations
	Success StyleConfig `yaml:"success" json:"success"`

	// Warning style for empty states
	Warning StyleConfig `yaml:"warning" json:"warning"`

	// Rule style for separators between releases
	Rule StyleConfig `yaml:"rule" json:"rule"`
}

// StyleConfig defines the visual styling for a semantic element.
// Colors can be a hex string or an adaptive {light, dark} object.
type StyleConfig struct {
	Foreground interface{} `yaml:"foreground,omitempty" json:"foreground,omitempty"`
	Background interface{} `yaml:"background,omitempty" json:"background,omitempty"`
	Bold       *bool       `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic     *bool       `yaml:"italic,omitempty" json:"italic,omitempty"`
	Underline  *bool       `yaml:"underline,omitempty" json:"underline,omitempty"`
	Faint      *bool       `yaml:"faint,omitempty" json:"faint,omitempty"`
}

// ThemeFile represents a complete theme file loaded from YAML.
type ThemeFile struct {
	ThemeConfig `yaml:",inline" json:",inline"`
}
