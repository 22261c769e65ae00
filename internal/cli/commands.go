package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ccreleases/internal/services"
	"ccreleases/internal/shell"
	"ccreleases/internal/version"
	"ccreleases/pkg/releasetypes"
)

const cliRetryHint = "Run the command again to retry."

type showOptions struct {
	search   string
	category string
	raw      bool
	limit    int
}

func addShowFlags(cmd *cobra.Command, opts *showOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.search, "search", "s", "", "Only show entries containing this text")
	flags.StringVarP(&opts.category, "category", "c", "", "Only show entries of this category (features|bugfixes|performance|devx)")
	flags.BoolVar(&opts.raw, "raw", false, "Render the releases as markdown")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "Show at most this many releases (0 shows all)")
}

// parseCategoryFlag accepts a category key or label; empty and "all" mean no filter.
func parseCategoryFlag(flags *pflag.FlagSet) (releasetypes.Category, error) {
	value, err := flags.GetString("category")
	if err != nil {
		return "", err
	}
	if value == "" || strings.EqualFold(value, "all") {
		return "", nil
	}
	category, ok := releasetypes.ParseCategory(value)
	if !ok {
		return "", fmt.Errorf("unknown category %q (run 'ccreleases categories')", value)
	}
	return category, nil
}

func (app *App) addShowCommand(rootCmd *cobra.Command) {
	opts := &showOptions{}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the release timeline",
		Long: `Fetch the changelog and render every release with its entries grouped by category.
Use --search and --category to narrow the timeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runShow(cmd, opts)
		},
	}
	addShowFlags(showCmd, opts)
	rootCmd.AddCommand(showCmd)
}

func (app *App) runShow(cmd *cobra.Command, opts *showOptions) error {
	category, err := parseCategoryFlag(cmd.Flags())
	if err != nil {
		return err
	}
	if opts.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	theme, err := app.theme()
	if err != nil {
		return err
	}

	state, loadErr := app.svc.Changelog.Load(cmd.Context())

	if opts.raw && loadErr == nil {
		releases := state.Releases
		if category != "" {
			releases = app.svc.Search.FilterByCategory(releases, category).Releases
		}
		releases = app.svc.Search.Filter(releases, opts.search).Releases
		if opts.limit > 0 && len(releases) > opts.limit {
			releases = releases[:opts.limit]
		}
		rendered, err := app.svc.Markdown.RenderWithTheme(services.ReleasesMarkdown(releases), theme)
		if err != nil {
			return err
		}
		_, _ = io.WriteString(app.out, rendered)
		return nil
	}

	app.println(app.svc.Render.RenderView(services.TimelineView{
		State:    state,
		Query:    opts.search,
		Category: category,
		Limit:    opts.limit,
	}, services.RenderOptions{
		Theme:      theme,
		Width:      app.Options.Width,
		RetryHint:  cliRetryHint,
		ShowHeader: true,
	}))

	if loadErr != nil {
		return ErrReported
	}
	return nil
}

func (app *App) addCategoriesCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Show the entry categories and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			theme, err := app.theme()
			if err != nil {
				return err
			}
			app.println(app.svc.Render.RenderCategories(theme))
			return nil
		},
	})
}

func (app *App) addThemeCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the stored color theme",
		Long:      `Without arguments, print the active theme. With an argument, store the new theme for later runs.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				name, err := app.themeName()
				if err != nil {
					return err
				}
				source := "default"
				if override, _ := app.themeOverride(); override != "" {
					source = "override"
				} else if _, ok := app.svc.Preference.StoredTheme(); ok {
					source = "stored"
				}
				app.println(fmt.Sprintf("Theme: %s (%s)", name, source))
				return nil
			}

			var next releasetypes.ThemeName
			if strings.EqualFold(args[0], "toggle") {
				toggled, err := app.svc.Preference.Toggle()
				if err != nil {
					return err
				}
				next = toggled
			} else {
				next = releasetypes.ThemeName(strings.ToLower(args[0]))
				if err := app.svc.Preference.SetTheme(next); err != nil {
					return err
				}
			}
			app.println(fmt.Sprintf("Theme set to %s", next))
			return nil
		},
	})
}

func (app *App) addExportCommand(rootCmd *cobra.Command) {
	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the parsed releases as json, yaml or markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportFormat, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}

			state, err := app.svc.Changelog.Load(cmd.Context())
			if err != nil {
				return errors.New(services.UserMessage(err))
			}

			var w io.Writer = app.out
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() { _ = file.Close() }()
				w = file
			}
			return app.export.Export(w, state.Releases, exportFormat)
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", string(services.ExportJSON), "Output format (json|yaml|markdown)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func (app *App) addCopyCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "copy [version|latest]",
		Short: "Copy one release as markdown to the clipboard",
		Long: `Copy the notes of one release to the system clipboard. When no clipboard is available
the markdown is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "latest"
			if len(args) > 0 {
				target = args[0]
			}

			state, err := app.svc.Changelog.Load(cmd.Context())
			if err != nil {
				return errors.New(services.UserMessage(err))
			}
			release, ok := app.svc.Search.FindRelease(state.Releases, target)
			if !ok {
				return fmt.Errorf("no release %q in the changelog", target)
			}

			text := services.ReleaseMarkdown(release)
			result, err := app.svc.Clipboard.Copy(text)
			if err != nil {
				return err
			}
			if result.Copied {
				app.println(fmt.Sprintf("Copied %d characters for %s", result.Chars, release.Version))
				return nil
			}
			_, _ = fmt.Fprintf(app.errOut, "Clipboard unavailable: %s\n", result.Reason)
			_, _ = io.WriteString(app.out, text)
			return nil
		},
	})
}

func (app *App) addShellCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the interactive release notes shell",
		Long:  `Browse the timeline interactively: search, filter by category, switch themes and retry failed loads.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override, err := app.themeOverride()
			if err != nil {
				return err
			}
			session := shell.NewSession(app.svc, app.out, app.profile(), app.Options.Width, override)
			session.Run(cmd.Context(), version.GetFormattedVersion())
			return nil
		},
	})
}

// addVersionCommand adds the version command
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version of ccreleases with build information.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := version.ValidateVersion(); err != nil {
				_, _ = fmt.Fprintf(app.errOut, "Warning: %v\n", err)
			}
			detailed, _ := cmd.Flags().GetBool("detailed")
			if detailed {
				app.println(version.GetDetailedVersion())
			} else {
				app.println(version.GetFormattedVersion())
			}
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	rootCmd.AddCommand(versionCmd)
}
