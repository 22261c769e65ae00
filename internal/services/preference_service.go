package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"

	"ccreleases/internal/logger"
	"ccreleases/pkg/releasetypes"
)

const preferencesFile = "preferences.yaml"

// BackgroundDetector reports whether the terminal background is dark.
// ok is false when the terminal cannot be queried.
type BackgroundDetector func() (dark bool, ok bool)

// DetectTerminalBackground queries the terminal through termenv.
func DetectTerminalBackground() (bool, bool) {
	output := termenv.DefaultOutput()
	if output.Profile == termenv.Ascii {
		return false, false
	}
	return output.HasDarkBackground(), true
}

// PreferenceService persists the theme choice across runs.
// Storage failures never surface to callers; they are logged at debug level.
type PreferenceService struct {
	initialized bool
	dir         string
	store       *viper.Viper
	detect      BackgroundDetector
	logger      *log.Logger
}

// NewPreferenceService creates a preference store in dir. A nil detector uses DetectTerminalBackground.
func NewPreferenceService(dir string, detect BackgroundDetector) *PreferenceService {
	if detect == nil {
		detect = DetectTerminalBackground
	}
	return &PreferenceService{
		dir:    dir,
		detect: detect,
	}
}

// Name returns the service name "preference" for registration.
func (p *PreferenceService) Name() string {
	return "preference"
}

// Initialize reads stored preferences. A missing or unreadable file leaves the store empty.
func (p *PreferenceService) Initialize() error {
	p.logger = logger.NewStyledLogger("Preferences")
	p.store = viper.New()
	p.store.SetConfigName("preferences")
	p.store.SetConfigType("yaml")
	if p.dir != "" {
		p.store.AddConfigPath(p.dir)
		if err := p.store.ReadInConfig(); err != nil {
			p.logger.Debug("No stored preferences", "error", err)
		}
	}
	p.initialized = true
	return nil
}

// Path returns the preferences file path.
func (p *PreferenceService) Path() string {
	return filepath.Join(p.dir, preferencesFile)
}

// StoredTheme returns the persisted theme if one is stored and valid.
func (p *PreferenceService) StoredTheme() (releasetypes.ThemeName, bool) {
	if !p.initialized {
		return "", false
	}
	stored := releasetypes.ThemeName(p.store.GetString(KeyTheme))
	if !stored.IsValid() {
		if stored != "" {
			p.logger.Debug("Ignoring invalid stored theme", "theme", stored)
		}
		return "", false
	}
	return stored, true
}

// ResolveTheme picks the stored theme, then the terminal background, then the default.
func (p *PreferenceService) ResolveTheme() releasetypes.ThemeName {
	if stored, ok := p.StoredTheme(); ok {
		return stored
	}
	if dark, ok := p.detect(); ok {
		if dark {
			return releasetypes.ThemeDark
		}
		return releasetypes.ThemeLight
	}
	return releasetypes.DefaultTheme
}

// SetTheme stores the theme. Only unknown theme names are reported as errors.
func (p *PreferenceService) SetTheme(theme releasetypes.ThemeName) error {
	if !theme.IsValid() {
		return fmt.Errorf("unknown theme %q (expected light or dark)", theme)
	}
	if !p.initialized {
		return fmt.Errorf("preference service not initialized")
	}

	p.store.Set(KeyTheme, theme.String())
	if p.dir == "" {
		return nil
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		p.logger.Debug("Could not create preferences directory", "error", err)
		return nil
	}
	if err := p.store.WriteConfigAs(p.Path()); err != nil {
		p.logger.Debug("Could not write preferences", "error", err)
	}
	return nil
}

// Toggle flips the resolved theme, stores it and returns the new value.
func (p *PreferenceService) Toggle() (releasetypes.ThemeName, error) {
	next := p.ResolveTheme().Toggle()
	if err := p.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}

// GetGlobalPreferenceService returns the preference service from the global registry.
func GetGlobalPreferenceService() (*PreferenceService, error) {
	return getGlobalService[*PreferenceService]("preference")
}
