package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccreleases/internal/services"
	"ccreleases/pkg/releasetypes"
)

const cliChangelog = `# Changelog

## 1.0.52

_Released 2025-06-10_

- Reduced startup time

## 1.0.53

- Add MCP server support
- Fix hooks not firing on exit
`

const cliCommits = `[
  {"sha": "b", "commit": {"author": {"date": "2025-06-20T08:00:00Z"}}},
  {"sha": "a", "commit": {"author": {"date": "2025-06-09T08:00:00Z"}}}
]`

type cliFixture struct {
	dir          string
	changelogURL string
	commitsURL   string
}

func newCLIFixture(t *testing.T, changelogStatus int) *cliFixture {
	t.Helper()

	changelog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if changelogStatus != http.StatusOK {
			w.WriteHeader(changelogStatus)
			return
		}
		_, _ = w.Write([]byte(cliChangelog))
	}))
	t.Cleanup(changelog.Close)

	commits := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cliCommits))
	}))
	t.Cleanup(commits.Close)

	return &cliFixture{
		dir:          t.TempDir(),
		changelogURL: changelog.URL,
		commitsURL:   commits.URL,
	}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	app.detectBackground = func() (bool, bool) { return false, false }

	cmd := app.CreateRootCommand()
	cmd.SetArgs(append([]string{
		"--config-dir", f.dir,
		"--changelog-url", f.changelogURL,
		"--commits-api-url", f.commitsURL,
		"--test-mode",
	}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_ShowsTimeline(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Claude Code")
	assert.Contains(t, out, "Release Notes & Changelog")
	assert.Contains(t, out, "1.0.53")
	assert.Contains(t, out, "Jun 20, 2025")
	assert.Contains(t, out, "2025-06-10")
	assert.Contains(t, out, "Bug Fixes")
	assert.Contains(t, out, "Reduced startup time")
}

func TestShow_SearchCategoryAndLimit(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "show", "--search", "HOOKS")
	require.NoError(t, err)
	assert.Contains(t, out, "Fix hooks not firing on exit")
	assert.NotContains(t, out, "Reduced startup time")
	assert.Contains(t, out, "1 entry across 1 release")

	out, _, err = fixture.run(t, "show", "-c", "performance")
	require.NoError(t, err)
	assert.Contains(t, out, "Reduced startup time")
	assert.NotContains(t, out, "Add MCP server support")

	out, _, err = fixture.run(t, "show", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.53")
	assert.Contains(t, out, "1 more release not shown")

	out, _, err = fixture.run(t, "show", "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No releases match")
}

func TestShow_InvalidFlags(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	_, _, err := fixture.run(t, "show", "--category", "bogus")
	assert.ErrorContains(t, err, "unknown category")

	_, _, err = fixture.run(t, "show", "--limit", "-1")
	assert.Error(t, err)

	_, _, err = fixture.run(t, "--theme", "sepia")
	assert.ErrorContains(t, err, "unknown theme")
}

func TestShow_Raw(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "show", "--raw", "--search", "startup")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.52")
	assert.Contains(t, out, "startup")
	assert.NotContains(t, out, "1.0.53")
}

func TestShow_LoadFailureIsReported(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusNotFound)

	out, _, err := fixture.run(t)
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out, "Unable to load release notes")
	assert.Contains(t, out, cliRetryHint)
}

func TestCategories(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "categories")
	require.NoError(t, err)
	for _, info := range releasetypes.Categories() {
		assert.Contains(t, out, info.Label)
		assert.Contains(t, out, info.Color)
	}
}

func TestTheme_StoreAndOverride(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "Theme: dark (default)\n", out)

	out, _, err = fixture.run(t, "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "Theme set to light\n", out)
	assert.FileExists(t, filepath.Join(fixture.dir, "preferences.yaml"))

	out, _, err = fixture.run(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "Theme: light (stored)\n", out)

	out, _, err = fixture.run(t, "--theme", "dark", "theme")
	require.NoError(t, err)
	assert.Equal(t, "Theme: dark (override)\n", out)

	out, _, err = fixture.run(t, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Theme set to dark\n", out)

	_, _, err = fixture.run(t, "theme", "sepia")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "export")
	require.NoError(t, err)

	var releases []releasetypes.Release
	require.NoError(t, json.Unmarshal([]byte(out), &releases))
	require.Len(t, releases, 2)
	assert.Equal(t, "1.0.53", releases[0].Version)
	assert.Equal(t, "Jun 20, 2025", releases[0].Date)
	assert.Equal(t, releasetypes.CategoryBugfixes, releases[0].Entries[1].Category)

	target := filepath.Join(t.TempDir(), "releases.md")
	out, _, err = fixture.run(t, "export", "--format", "markdown", "--output", target)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Changelog")
	assert.Contains(t, string(data), "## 1.0.52")

	_, _, err = fixture.run(t, "export", "--format", "csv")
	assert.Error(t, err)
}

func TestExport_LoadFailure(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusInternalServerError)

	_, _, err := fixture.run(t, "export")
	assert.EqualError(t, err, services.UserMessage(&services.FetchError{Kind: services.FetchErrorStatus}))
}

func TestCopy(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, errOut, err := fixture.run(t, "copy", "1.0.52")
	require.NoError(t, err)
	if errOut != "" {
		assert.Contains(t, errOut, "Clipboard unavailable")
		assert.Contains(t, out, "## 1.0.52")
		assert.Contains(t, out, "_Released 2025-06-10_")
	} else {
		assert.Contains(t, out, "Copied")
	}

	_, _, err = fixture.run(t, "copy", "9.9.9")
	assert.ErrorContains(t, err, "no release")
}

func TestVersion(t *testing.T) {
	fixture := newCLIFixture(t, http.StatusOK)

	out, _, err := fixture.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ccreleases v")

	out, _, err = fixture.run(t, "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version:")
}

func TestInitializeServices_RegistersEverything(t *testing.T) {
	app := NewApp(&bytes.Buffer{}, &bytes.Buffer{})
	app.Options.ConfigDir = t.TempDir()
	require.NoError(t, app.InitializeServices())

	names := services.GetGlobalRegistry().ServiceNames()
	for _, name := range []string{"changelog", "clipboard", "commit_date", "configuration", "export", "http_request", "markdown", "preference", "render", "search", "theme"} {
		assert.Contains(t, names, name)
	}

	commits, err := services.GetGlobalCommitDateService()
	require.NoError(t, err)
	requestURL, err := commits.RequestURL()
	require.NoError(t, err)
	assert.Contains(t, requestURL, "per_page=100")

	_, err = services.GetGlobalHTTPRequestService()
	assert.NoError(t, err)
}
