package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"ccreleases/pkg/releasetypes"
)

const defaultRuleWidth = 48

// emptySearchSuggestions are offered when a query matches nothing.
var emptySearchSuggestions = []string{"features", "performance", "MCP"}

// RenderOptions controls how a view is drawn.
type RenderOptions struct {
	Theme      *Theme
	Width      int    // truncate lines to this many cells, 0 disables truncation
	RetryHint  string // shown under error messages
	ShowHeader bool
}

// TimelineView is everything the timeline screen depends on.
type TimelineView struct {
	State    State
	Query    string
	Category releasetypes.Category // empty means all categories
	Limit    int                   // maximum releases shown, 0 means all
}

// RenderService draws the release timeline and its loading, empty and error states.
type RenderService struct {
	initialized bool
	search      *SearchService
}

// NewRenderService creates a renderer that filters through the given search service.
func NewRenderService(search *SearchService) *RenderService {
	return &RenderService{search: search}
}

// Name returns the service name "render" for registration.
func (r *RenderService) Name() string {
	return "render"
}

// Initialize sets up the RenderService for operation.
func (r *RenderService) Initialize() error {
	if r.search == nil {
		return fmt.Errorf("render service requires a search service")
	}
	r.initialized = true
	return nil
}

// RenderView draws a complete screen for the view.
func (r *RenderService) RenderView(view TimelineView, opts RenderOptions) string {
	theme := themeOrPlain(opts.Theme)

	var sections []string
	if opts.ShowHeader {
		sections = append(sections, r.RenderHeader(theme))
	}

	switch view.State.Status {
	case releasetypes.LoadStatusLoading:
		sections = append(sections, r.RenderLoading(theme))
	case releasetypes.LoadStatusError:
		sections = append(sections, r.RenderError(theme, view.State.Err, opts.RetryHint))
	default:
		sections = append(sections, r.renderReleases(view, theme))
	}

	return truncateLines(strings.Join(sections, "\n\n"), opts.Width)
}

func (r *RenderService) renderReleases(view TimelineView, theme *Theme) string {
	releases := view.State.Releases
	if len(releases) == 0 {
		return r.RenderEmpty(theme)
	}

	if view.Category != "" {
		releases = r.search.FilterByCategory(releases, view.Category).Releases
	}

	result := r.search.Filter(releases, view.Query)
	if result.Active() && result.MatchCount == 0 {
		return r.RenderEmptySearch(theme, result.Query, emptySearchSuggestions)
	}
	if len(result.Releases) == 0 {
		return theme.Muted.Render(fmt.Sprintf("No %s entries in any release.", releasetypes.LookupCategory(view.Category).Label))
	}

	shown := result.Releases
	if view.Limit > 0 && len(shown) > view.Limit {
		shown = shown[:view.Limit]
	}

	var parts []string
	if status := r.RenderSearchStatus(theme, result); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, r.RenderTimeline(theme, shown))
	if hidden := len(result.Releases) - len(shown); hidden > 0 {
		parts = append(parts, theme.Muted.Render(fmt.Sprintf("%d more %s not shown", hidden, plural(hidden, "release", "releases"))))
	}
	return strings.Join(parts, "\n\n")
}

// RenderHeader draws the title block.
func (r *RenderService) RenderHeader(theme *Theme) string {
	theme = themeOrPlain(theme)
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Claude Code"),
		theme.Subtitle.Render("Release Notes & Changelog"),
	)
}

// RenderSearchStatus describes how many entries match an active query.
// It is empty when no query is active or nothing matched.
func (r *RenderService) RenderSearchStatus(theme *Theme, result SearchResult) string {
	if !result.Active() || result.MatchCount == 0 {
		return ""
	}
	theme = themeOrPlain(theme)
	return fmt.Sprintf("%s %s across %s %s match \"%s\"",
		theme.Entry.Render(fmt.Sprint(result.MatchCount)),
		theme.Muted.Render(plural(result.MatchCount, "entry", "entries")),
		theme.Entry.Render(fmt.Sprint(result.ReleaseCount)),
		theme.Muted.Render(plural(result.ReleaseCount, "release", "releases")),
		theme.Accent.Render(result.Query),
	)
}

// RenderTimeline draws releases separated by rules.
func (r *RenderService) RenderTimeline(theme *Theme, releases []releasetypes.Release) string {
	theme = themeOrPlain(theme)
	rule := theme.Rule.Render(strings.Repeat("─", defaultRuleWidth))

	blocks := make([]string, 0, len(releases))
	for _, release := range releases {
		blocks = append(blocks, r.RenderRelease(theme, release))
	}
	return strings.Join(blocks, "\n"+rule+"\n\n")
}

// RenderRelease draws one release with its entries grouped by category in display order.
// Categories without entries are omitted.
func (r *RenderService) RenderRelease(theme *Theme, release releasetypes.Release) string {
	theme = themeOrPlain(theme)

	heading := theme.Version.Render(release.Version)
	if release.Date != "" {
		heading += "  " + theme.Date.Render(release.Date)
	}

	lines := []string{heading}
	groups := release.EntriesByCategory()
	for _, category := range releasetypes.DisplayOrder() {
		entries := groups[category]
		if len(entries) == 0 {
			continue
		}
		info := releasetypes.LookupCategory(category)

		items := make([]string, len(entries))
		for i, entry := range entries {
			items[i] = entry.Content
		}

		lines = append(lines,
			"",
			"  "+theme.CategoryStyle(category).Render(info.Icon+" "+info.Label),
			indent(theme.CreateSimpleList(items).String(), "  "),
		)
	}
	if len(groups) == 0 {
		lines = append(lines, theme.Muted.Render("  No entries"))
	}

	return strings.Join(lines, "\n") + "\n"
}

// RenderLoading draws the loading state.
func (r *RenderService) RenderLoading(theme *Theme) string {
	return themeOrPlain(theme).Muted.Render("Loading release notes...")
}

// RenderError draws the user-facing message for a load error plus a retry hint.
func (r *RenderService) RenderError(theme *Theme, err error, retryHint string) string {
	theme = themeOrPlain(theme)
	message := UserMessage(err)
	if message == "" {
		message = userMessages[FetchErrorUnknown]
	}
	out := theme.Error.Render("! " + message)
	if retryHint != "" {
		out += "\n" + theme.Muted.Render(retryHint)
	}
	return out
}

// RenderEmpty draws the state for a changelog without releases.
func (r *RenderService) RenderEmpty(theme *Theme) string {
	return themeOrPlain(theme).Warning.Render("No releases found in the changelog.")
}

// RenderEmptySearch draws the no-results state for a query.
func (r *RenderService) RenderEmptySearch(theme *Theme, query string, suggestions []string) string {
	theme = themeOrPlain(theme)
	heading := fmt.Sprintf("No releases match \"%s\"", theme.Accent.Render(query))

	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s + "'"
	}
	lines := []string{theme.Warning.Render(heading)}
	if len(quoted) > 0 {
		lines = append(lines, theme.Muted.Render("Try searching for "+joinAlternatives(quoted)))
	}
	lines = append(lines, theme.Muted.Render("Clear the search to see every release."))
	return strings.Join(lines, "\n")
}

// RenderCategories draws the category legend with colors and keywords.
func (r *RenderService) RenderCategories(theme *Theme) string {
	theme = themeOrPlain(theme)

	var lines []string
	for _, category := range releasetypes.DisplayOrder() {
		info := releasetypes.LookupCategory(category)
		label := theme.CategoryStyle(category).Render(fmt.Sprintf("%s %-12s", info.Icon, info.Label))
		keywords := make([]string, len(info.Keywords))
		for i, kw := range info.Keywords {
			if releasetypes.CompleteWordKeywords[kw] {
				kw += "*"
			}
			keywords[i] = kw
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			label,
			theme.Muted.Render(info.Color),
			theme.Entry.Render(strings.Join(keywords, ", "))))
	}
	lines = append(lines, "", theme.Muted.Render(fmt.Sprintf(
		"* whole word only. Entries matching nothing are %s.", releasetypes.LookupCategory(releasetypes.DefaultCategory).Label)))
	return strings.Join(lines, "\n")
}

func themeOrPlain(theme *Theme) *Theme {
	if theme == nil {
		return newPlainTheme(PlainThemeName)
	}
	return theme
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// joinAlternatives joins items as "a, b, or c".
func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// truncateLines cuts every line to width cells, keeping ANSI sequences intact.
func truncateLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

// GetGlobalRenderService returns the render service from the global registry.
func GetGlobalRenderService() (*RenderService, error) {
	return getGlobalService[*RenderService]("render")
}
