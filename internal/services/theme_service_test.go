package services

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccreleases/pkg/releasetypes"
)

func newInitializedThemeService(t *testing.T) *ThemeService {
	t.Helper()
	service := NewThemeService()
	require.NoError(t, service.Initialize())
	return service
}

func TestThemeService_LoadsEmbeddedThemes(t *testing.T) {
	service := newInitializedThemeService(t)

	assert.Equal(t, "theme", service.Name())
	assert.Equal(t, []string{"dark", "light", "plain"}, service.GetAvailableThemes())

	dark, ok := service.GetTheme("dark")
	require.True(t, ok)
	assert.Equal(t, "dark", dark.Name)
	assert.Equal(t, "dark", dark.GlamourStyle)
	assert.False(t, dark.IsPlain())
	assert.Equal(t, lipgloss.Color("#d97757"), dark.Accent.GetForeground())
	assert.True(t, dark.Version.GetBold())

	light, ok := service.GetTheme("light")
	require.True(t, ok)
	assert.Equal(t, "light", light.GlamourStyle)
	assert.Equal(t, lipgloss.Color("#141413"), light.Entry.GetForeground())
}

func TestThemeService_Uninitialized(t *testing.T) {
	service := NewThemeService()

	assert.Empty(t, service.GetAvailableThemes())
	_, ok := service.GetTheme("dark")
	assert.False(t, ok)
	assert.True(t, service.GetThemeByName("dark").IsPlain())
}

func TestThemeService_GetThemeByName(t *testing.T) {
	service := newInitializedThemeService(t)

	assert.Equal(t, "dark", service.GetThemeByName(" DARK ").Name)
	assert.Equal(t, "light", service.GetThemeByName("Light").Name)
	assert.Equal(t, PlainThemeName, service.GetThemeByName("solarized").Name)
	assert.Equal(t, PlainThemeName, service.GetThemeByName("").Name)
}

func TestThemeService_ForProfile(t *testing.T) {
	service := newInitializedThemeService(t)

	assert.True(t, service.ForProfile(releasetypes.ThemeDark, termenv.Ascii).IsPlain())
	assert.Equal(t, "dark", service.ForProfile(releasetypes.ThemeDark, termenv.TrueColor).Name)
	assert.Equal(t, "light", service.ForProfile(releasetypes.ThemeLight, termenv.ANSI256).Name)
}

func TestThemeService_LoadThemeFileErrors(t *testing.T) {
	service := NewThemeService()

	_, err := service.loadThemeFile([]byte("name: [unclosed"))
	assert.Error(t, err)

	_, err = service.loadThemeFile([]byte("styles: {}"))
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#fff"), parseColor("#fff"))
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#000", Dark: "#fff"},
		parseColor(map[string]interface{}{"light": "#000", "dark": "#fff"}))
	assert.Nil(t, parseColor(map[string]interface{}{"light": "#000"}))
	assert.Nil(t, parseColor(42))
	assert.Nil(t, parseColor(nil))
}

func TestTheme_CategoryStyle(t *testing.T) {
	service := newInitializedThemeService(t)

	dark := service.GetThemeByName("dark")
	assert.Equal(t, lipgloss.Color("#788c5d"), dark.CategoryStyle(releasetypes.CategoryBugfixes).GetForeground())
	assert.Equal(t, lipgloss.Color("#6a9bcc"), dark.CategoryStyle(releasetypes.Category("other")).GetForeground())

	plain := service.GetThemeByName(PlainThemeName)
	assert.Equal(t, lipgloss.NoColor{}, plain.CategoryStyle(releasetypes.CategoryBugfixes).GetForeground())
}

func TestTheme_CreateSimpleList(t *testing.T) {
	theme := newPlainTheme(PlainThemeName)

	rendered := ansi.Strip(theme.CreateSimpleList([]string{"first", "second"}).String())
	lines := strings.Split(rendered, "\n")

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "•")
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
