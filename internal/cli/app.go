// Package cli provides the command-line interface for ccreleases.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ccreleases/internal/logger"
	"ccreleases/internal/services"
	"ccreleases/internal/shell"
	"ccreleases/pkg/releasetypes"
)

// ErrReported is returned when a command has already shown its failure to the user.
var ErrReported = errors.New("error already reported")

// Options holds the global flag values.
type Options struct {
	ConfigDir     string
	LogLevel      string
	LogFile       string
	Theme         string
	Width         int
	ChangelogURL  string
	CommitsAPIURL string
	TestMode      bool
}

// App represents the ccreleases CLI application
type App struct {
	Options Options

	out    io.Writer
	errOut io.Writer
	viper  *viper.Viper

	detectBackground services.BackgroundDetector

	config *services.ConfigurationService
	export *services.ExportService
	svc    shell.Services
}

// NewApp creates a new CLI application writing to out and errOut.
func NewApp(out, errOut io.Writer) *App {
	return &App{
		out:    out,
		errOut: errOut,
		viper:  viper.New(),
	}
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	show := &showOptions{}
	rootCmd := &cobra.Command{
		Use:   "ccreleases",
		Short: "Claude Code release notes in the terminal",
		Long: `ccreleases fetches the Claude Code changelog, classifies every entry and renders
a searchable timeline of releases. Without a subcommand it behaves like 'show'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.InitializeServices()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runShow(cmd, show)
		},
	}
	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Options.ConfigDir, "config-dir", "", "Configuration directory [default: $XDG_CONFIG_HOME/ccreleases]")
	flags.StringVar(&app.Options.LogLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&app.Options.LogFile, "log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&app.Options.Theme, "theme", "", "Color theme (light|dark) [default: stored preference]")
	flags.IntVar(&app.Options.Width, "width", 0, "Truncate output lines to this many columns (0 disables)")
	flags.StringVar(&app.Options.ChangelogURL, "changelog-url", "", "Changelog document URL")
	flags.StringVar(&app.Options.CommitsAPIURL, "commits-api-url", "", "Commit history API URL used to resolve missing dates")
	flags.BoolVar(&app.Options.TestMode, "test-mode", false, "Run in deterministic test mode")

	app.bindFlag(rootCmd, "log-level", services.KeyLogLevel)
	app.bindFlag(rootCmd, "theme", services.KeyTheme)
	app.bindFlag(rootCmd, "changelog-url", services.KeyChangelogURL)
	app.bindFlag(rootCmd, "commits-api-url", services.KeyCommitsAPIURL)

	addShowFlags(rootCmd, show)

	app.addShowCommand(rootCmd)
	app.addCategoriesCommand(rootCmd)
	app.addThemeCommand(rootCmd)
	app.addExportCommand(rootCmd)
	app.addCopyCommand(rootCmd)
	app.addShellCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

func (app *App) bindFlag(cmd *cobra.Command, flag, key string) {
	if err := app.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding %s flag: %v", flag, err))
	}
}

// InitializeServices loads configuration and registers every service in a fresh registry.
func (app *App) InitializeServices() error {
	config := services.NewConfigurationService(app.viper, app.Options.ConfigDir)
	if err := config.Initialize(); err != nil {
		return err
	}
	cfg, err := config.Config()
	if err != nil {
		return err
	}

	if err := logger.Configure(cfg.LogLevel, app.Options.LogFile, app.Options.TestMode); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	httpService := services.NewHTTPRequestService()
	httpService.SetTimeout(cfg.HTTPTimeout)
	commitDates := services.NewCommitDateService(httpService, cfg.CommitsAPIURL, cfg.ChangelogPath, cfg.CommitsPerPage)
	search := services.NewSearchService()

	registry := services.NewRegistry()
	for _, service := range []releasetypes.Service{
		config,
		httpService,
		commitDates,
		services.NewChangelogService(httpService, commitDates, cfg.ChangelogURL),
		search,
		services.NewThemeService(),
		services.NewPreferenceService(config.ConfigDir(), app.detectBackground),
		services.NewRenderService(search),
		services.NewMarkdownService(),
		services.NewExportService(),
		services.NewClipboardService(),
	} {
		if err := registry.RegisterService(service); err != nil {
			return err
		}
	}
	if err := registry.InitializeAll(); err != nil {
		return err
	}
	services.SetGlobalRegistry(registry)

	if app.config, err = services.GetGlobalConfigurationService(); err != nil {
		return err
	}
	if app.export, err = services.GetGlobalExportService(); err != nil {
		return err
	}
	if app.svc, err = shell.ServicesFromRegistry(); err != nil {
		return err
	}

	if app.Options.Width > 0 {
		if err := app.svc.Markdown.SetWordWrap(app.Options.Width); err != nil {
			return err
		}
	}

	logger.Debug("Services initialized", "services", strings.Join(registry.ServiceNames(), ","))
	return nil
}

// themeOverride returns the theme named by flag, environment or config file, if any.
func (app *App) themeOverride() (releasetypes.ThemeName, error) {
	cfg, err := app.config.Config()
	if err != nil {
		return "", err
	}
	if cfg.Theme == "" {
		return "", nil
	}
	name := releasetypes.ThemeName(strings.ToLower(cfg.Theme))
	if !name.IsValid() {
		return "", fmt.Errorf("unknown theme %q (expected light or dark)", cfg.Theme)
	}
	return name, nil
}

// themeName resolves the active theme: explicit override first, then the stored preference.
func (app *App) themeName() (releasetypes.ThemeName, error) {
	override, err := app.themeOverride()
	if err != nil {
		return "", err
	}
	if override != "" {
		return override, nil
	}
	return app.svc.Preference.ResolveTheme(), nil
}

func (app *App) profile() termenv.Profile {
	return termenv.NewOutput(app.out).Profile
}

func (app *App) theme() (*services.Theme, error) {
	name, err := app.themeName()
	if err != nil {
		return nil, err
	}
	return app.svc.Themes.ForProfile(name, app.profile()), nil
}

func (app *App) println(text string) {
	_, _ = fmt.Fprintln(app.out, text)
}
