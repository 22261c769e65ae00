package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ccreleases/internal/logger"
)

// EnvPrefix prefixes every environment variable read by the configuration layer.
const EnvPrefix = "CCRELEASES"

// Configuration keys shared by the config file, environment and bound flags.
const (
	KeyChangelogURL   = "changelog_url"
	KeyCommitsAPIURL  = "commits_api_url"
	KeyChangelogPath  = "changelog_path"
	KeyCommitsPerPage = "commits_per_page"
	KeyHTTPTimeout    = "http_timeout"
	KeyTheme          = "theme"
	KeyLogLevel       = "log_level"
)

// Config is the resolved application configuration.
type Config struct {
	ChangelogURL   string        `mapstructure:"changelog_url"`
	CommitsAPIURL  string        `mapstructure:"commits_api_url"`
	ChangelogPath  string        `mapstructure:"changelog_path"`
	CommitsPerPage int           `mapstructure:"commits_per_page"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	Theme          string        `mapstructure:"theme"`
	LogLevel       string        `mapstructure:"log_level"`
}

// ConfigPaths represents configuration file paths and their loading status
type ConfigPaths struct {
	ConfigDir        string // Configuration directory path
	ConfigDirExists  bool   // Whether configuration directory exists
	ConfigFilePath   string // config.yaml path
	ConfigFileLoaded bool   // Whether config.yaml was read
	EnvFilePath      string // .env path
	EnvFileLoaded    bool   // Whether .env was loaded
}

// ConfigurationService loads configuration with viper.
// Priority (highest to lowest): bound flags > environment > config dir .env > config.yaml > defaults.
type ConfigurationService struct {
	initialized bool
	v           *viper.Viper
	paths       ConfigPaths
	config      Config
}

// NewConfigurationService creates a configuration service. A nil viper instance gets a fresh one
// and an empty configDir selects DefaultConfigDir.
func NewConfigurationService(v *viper.Viper, configDir string) *ConfigurationService {
	if v == nil {
		v = viper.New()
	}
	return &ConfigurationService{
		v:     v,
		paths: ConfigPaths{ConfigDir: configDir},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/ccreleases, falling back to ~/.config/ccreleases.
func DefaultConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "ccreleases"), nil
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Initialize reads every configuration source.
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	if c.paths.ConfigDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return err
		}
		c.paths.ConfigDir = dir
	}
	if info, err := os.Stat(c.paths.ConfigDir); err == nil && info.IsDir() {
		c.paths.ConfigDirExists = true
	}

	c.setDefaults()

	if err := c.loadDotEnv(); err != nil {
		return err
	}

	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.v.AutomaticEnv()

	if err := c.loadConfigFile(); err != nil {
		return err
	}

	if err := c.v.Unmarshal(&c.config); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	c.initialized = true
	logger.Debug("Configuration loaded",
		"config_dir", c.paths.ConfigDir,
		"config_file", c.paths.ConfigFileLoaded,
		"env_file", c.paths.EnvFileLoaded)
	return nil
}

func (c *ConfigurationService) setDefaults() {
	c.v.SetDefault(KeyChangelogURL, DefaultChangelogURL)
	c.v.SetDefault(KeyCommitsAPIURL, DefaultCommitsAPIURL)
	c.v.SetDefault(KeyChangelogPath, DefaultChangelogPath)
	c.v.SetDefault(KeyCommitsPerPage, DefaultCommitsPerPage)
	c.v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	c.v.SetDefault(KeyTheme, "")
	c.v.SetDefault(KeyLogLevel, "")
}

// loadDotEnv exports the config dir .env into the process environment.
// Variables already set in the environment keep their values.
func (c *ConfigurationService) loadDotEnv() error {
	envPath := filepath.Join(c.paths.ConfigDir, ".env")
	c.paths.EnvFilePath = envPath

	if _, err := os.Stat(envPath); err != nil {
		return nil // Missing .env file is not an error
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load .env file %s: %w", envPath, err)
	}
	c.paths.EnvFileLoaded = true
	return nil
}

func (c *ConfigurationService) loadConfigFile() error {
	c.v.SetConfigName("config")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(c.paths.ConfigDir)
	c.paths.ConfigFilePath = filepath.Join(c.paths.ConfigDir, "config.yaml")

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", c.paths.ConfigFilePath, err)
	}
	c.paths.ConfigFileLoaded = true
	return nil
}

// Config returns the resolved configuration.
func (c *ConfigurationService) Config() (Config, error) {
	if !c.initialized {
		return Config{}, fmt.Errorf("configuration service not initialized")
	}
	return c.config, nil
}

// GetConfigValue returns a single configuration value as a string.
func (c *ConfigurationService) GetConfigValue(key string) (string, error) {
	if !c.initialized {
		return "", fmt.Errorf("configuration service not initialized")
	}
	return c.v.GetString(key), nil
}

// GetConfigurationPaths returns configuration file paths and their loading status.
func (c *ConfigurationService) GetConfigurationPaths() (ConfigPaths, error) {
	if !c.initialized {
		return ConfigPaths{}, fmt.Errorf("configuration service not initialized")
	}
	return c.paths, nil
}

// ConfigDir returns the configuration directory, resolved during Initialize.
func (c *ConfigurationService) ConfigDir() string {
	return c.paths.ConfigDir
}

// GetGlobalConfigurationService returns the configuration service from the global registry.
func GetGlobalConfigurationService() (*ConfigurationService, error) {
	return getGlobalService[*ConfigurationService]("configuration")
}
