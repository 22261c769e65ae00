// Package shell provides the interactive release-notes session for ccreleases.
// It keeps the search query, category filter and theme between commands and routes
// ishell input to the timeline services.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/abiosoft/ishell/v2"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"ccreleases/internal/logger"
	"ccreleases/internal/services"
	"ccreleases/pkg/releasetypes"
)

// retryHint is printed below error messages inside the shell.
const retryHint = "Type 'retry' to try again."

// Services groups the collaborators a session draws on.
type Services struct {
	Changelog  *services.ChangelogService
	Search     *services.SearchService
	Render     *services.RenderService
	Markdown   *services.MarkdownService
	Clipboard  *services.ClipboardService
	Preference *services.PreferenceService
	Themes     *services.ThemeService
}

// ServicesFromRegistry resolves every session collaborator from the global registry.
func ServicesFromRegistry() (Services, error) {
	var svc Services
	var err error
	if svc.Changelog, err = services.GetGlobalChangelogService(); err != nil {
		return svc, err
	}
	if svc.Search, err = services.GetGlobalSearchService(); err != nil {
		return svc, err
	}
	if svc.Render, err = services.GetGlobalRenderService(); err != nil {
		return svc, err
	}
	if svc.Markdown, err = services.GetGlobalMarkdownService(); err != nil {
		return svc, err
	}
	if svc.Clipboard, err = services.GetGlobalClipboardService(); err != nil {
		return svc, err
	}
	if svc.Preference, err = services.GetGlobalPreferenceService(); err != nil {
		return svc, err
	}
	if svc.Themes, err = services.GetGlobalThemeService(); err != nil {
		return svc, err
	}
	return svc, nil
}

// Session is one interactive viewing session.
type Session struct {
	svc     Services
	out     io.Writer
	profile termenv.Profile
	width   int
	logger  *log.Logger

	mu       sync.Mutex
	query    string
	category releasetypes.Category
	theme    releasetypes.ThemeName
	printer  func(string)

	pending sync.WaitGroup
}

// NewSession creates a session writing to out. The theme starts at the resolved
// preference unless override names a valid theme.
func NewSession(svc Services, out io.Writer, profile termenv.Profile, width int, override releasetypes.ThemeName) *Session {
	theme := override
	if !theme.IsValid() {
		theme = svc.Preference.ResolveTheme()
	}
	s := &Session{
		svc:     svc,
		out:     out,
		profile: profile,
		width:   width,
		theme:   theme,
		logger:  logger.NewStyledLogger("Shell"),
	}
	s.printer = func(text string) {
		_, _ = fmt.Fprintln(s.out, text)
	}
	return s
}

// Query returns the active search query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Category returns the active category filter, empty for all categories.
func (s *Session) Category() releasetypes.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// ThemeName returns the active theme.
func (s *Session) ThemeName() releasetypes.ThemeName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Versions lists the versions of the currently loaded releases.
func (s *Session) Versions() []string {
	releases := s.svc.Changelog.State().Releases
	versions := make([]string, 0, len(releases))
	for _, release := range releases {
		versions = append(versions, release.Version)
	}
	return versions
}

// Load performs the initial fetch and returns the rendered view.
func (s *Session) Load(ctx context.Context) string {
	if _, err := s.svc.Changelog.Load(ctx); err != nil && !errors.Is(err, services.ErrSuperseded) {
		s.logger.Debug("Initial load failed", "error", err)
	}
	return s.view(true)
}

// Reload starts a new load attempt in the background and prints the view when it
// completes. A completion overtaken by a newer attempt prints nothing.
func (s *Session) Reload(ctx context.Context) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		_, err := s.svc.Changelog.Retry(ctx)
		if errors.Is(err, services.ErrSuperseded) {
			return
		}
		s.print(s.view(false))
	}()
}

// Wait blocks until every background reload has finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Execute runs one shell command and returns its output.
func (s *Session) Execute(ctx context.Context, name string, args []string) (string, error) {
	switch strings.ToLower(name) {
	case "search", "/":
		return s.search(strings.Join(args, " ")), nil
	case "clear":
		s.mu.Lock()
		s.query = ""
		s.category = ""
		s.mu.Unlock()
		return s.view(false), nil
	case "category":
		return s.setCategory(args)
	case "categories":
		return s.svc.Render.RenderCategories(s.currentTheme()), nil
	case "retry":
		s.Reload(ctx)
		return s.svc.Render.RenderLoading(s.currentTheme()), nil
	case "theme":
		return s.setTheme(args)
	case "show":
		return s.view(true), nil
	case "copy":
		return s.copyRelease(args)
	case "raw":
		return s.raw()
	default:
		return "", fmt.Errorf("unknown command %q", name)
	}
}

func (s *Session) search(query string) string {
	s.mu.Lock()
	s.query = strings.TrimSpace(query)
	s.mu.Unlock()
	return s.view(false)
}

func (s *Session) setCategory(args []string) (string, error) {
	if len(args) == 0 {
		current := "all"
		if c := s.Category(); c != "" {
			current = c.String()
		}
		return fmt.Sprintf("Category filter: %s", current), nil
	}

	if strings.EqualFold(args[0], "all") {
		s.mu.Lock()
		s.category = ""
		s.mu.Unlock()
		return s.view(false), nil
	}

	category, ok := releasetypes.ParseCategory(args[0])
	if !ok {
		return "", fmt.Errorf("unknown category %q (try 'categories')", args[0])
	}
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()
	return s.view(false), nil
}

func (s *Session) setTheme(args []string) (string, error) {
	var next releasetypes.ThemeName
	switch {
	case len(args) == 0:
		return fmt.Sprintf("Theme: %s", s.ThemeName()), nil
	case strings.EqualFold(args[0], "toggle"):
		next = s.ThemeName().Toggle()
	default:
		next = releasetypes.ThemeName(strings.ToLower(args[0]))
	}

	if err := s.svc.Preference.SetTheme(next); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.theme = next
	s.mu.Unlock()
	return fmt.Sprintf("Theme set to %s", next), nil
}

func (s *Session) copyRelease(args []string) (string, error) {
	version := "latest"
	if len(args) > 0 {
		version = args[0]
	}

	release, ok := s.svc.Search.FindRelease(s.svc.Changelog.State().Releases, version)
	if !ok {
		return "", fmt.Errorf("no release %q loaded", version)
	}

	text := services.ReleaseMarkdown(release)
	result, err := s.svc.Clipboard.Copy(text)
	if err != nil {
		return "", err
	}
	if result.Copied {
		return fmt.Sprintf("Copied %d characters for %s", result.Chars, release.Version), nil
	}
	notice := "Clipboard unavailable."
	if result.Reason != "" {
		notice = fmt.Sprintf("Clipboard unavailable (%s).", result.Reason)
	}
	return notice + "\n\n" + text, nil
}

// raw renders the filtered releases as markdown through glamour.
func (s *Session) raw() (string, error) {
	releases := s.svc.Changelog.State().Releases
	if category := s.Category(); category != "" {
		releases = s.svc.Search.FilterByCategory(releases, category).Releases
	}
	releases = s.svc.Search.Filter(releases, s.Query()).Releases

	return s.svc.Markdown.RenderWithTheme(services.ReleasesMarkdown(releases), s.currentTheme())
}

func (s *Session) currentTheme() *services.Theme {
	return s.svc.Themes.ForProfile(s.ThemeName(), s.profile)
}

func (s *Session) view(header bool) string {
	s.mu.Lock()
	view := services.TimelineView{
		State:    s.svc.Changelog.State(),
		Query:    s.query,
		Category: s.category,
	}
	s.mu.Unlock()

	return s.svc.Render.RenderView(view, services.RenderOptions{
		Theme:      s.currentTheme(),
		Width:      s.width,
		RetryHint:  retryHint,
		ShowHeader: header,
	})
}

func (s *Session) print(text string) {
	s.mu.Lock()
	printer := s.printer
	s.mu.Unlock()
	printer(text)
}

// Run starts the interactive shell and blocks until the user exits.
func (s *Session) Run(ctx context.Context, banner string) {
	sh := ishell.New()
	sh.SetPrompt("ccreleases> ")
	sh.CustomCompleter(NewCompleter(s))

	s.mu.Lock()
	s.printer = func(text string) { sh.Println(text) }
	s.mu.Unlock()

	for _, cmd := range s.commands(ctx) {
		sh.AddCmd(cmd)
	}
	sh.NotFound(func(c *ishell.Context) {
		s.handleSlash(ctx, c)
	})

	sh.Println(banner)
	sh.Println("Type 'help' for commands, '/<query>' to search, 'exit' to quit.")
	sh.Println(s.Load(ctx))
	sh.Run()
	s.Wait()
}

func (s *Session) commands(ctx context.Context) []*ishell.Cmd {
	help := []struct {
		name    string
		aliases []string
		help    string
	}{
		{"search", []string{"/"}, "filter entries by text: search <query>"},
		{"clear", nil, "clear the search query and category filter"},
		{"category", nil, "filter by category: category <name|all>"},
		{"categories", nil, "show the category legend"},
		{"retry", nil, "fetch the changelog again"},
		{"theme", nil, "switch theme: theme <light|dark|toggle>"},
		{"show", nil, "redraw the timeline"},
		{"copy", nil, "copy a release as markdown: copy <version|latest>"},
		{"raw", nil, "render the filtered releases as markdown"},
	}

	cmds := make([]*ishell.Cmd, 0, len(help))
	for _, h := range help {
		name := h.name
		cmds = append(cmds, &ishell.Cmd{
			Name:    name,
			Aliases: h.aliases,
			Help:    h.help,
			Func: func(c *ishell.Context) {
				s.respond(ctx, c, name, c.Args)
			},
		})
	}
	return cmds
}

// handleSlash treats "/query" input as a search.
func (s *Session) handleSlash(ctx context.Context, c *ishell.Context) {
	raw := strings.TrimSpace(strings.Join(c.RawArgs, " "))
	if !strings.HasPrefix(raw, "/") {
		c.Println(fmt.Sprintf("Unknown command %q. Type 'help' for commands.", raw))
		return
	}
	s.respond(ctx, c, "search", strings.Fields(strings.TrimPrefix(raw, "/")))
}

func (s *Session) respond(ctx context.Context, c *ishell.Context, name string, args []string) {
	output, err := s.Execute(ctx, name, args)
	if err != nil {
		c.Println("Error: " + err.Error())
		return
	}
	if output != "" {
		c.Println(output)
	}
}
