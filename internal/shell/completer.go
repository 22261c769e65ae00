package shell

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"ccreleases/pkg/releasetypes"
)

var _ readline.AutoCompleter = (*Completer)(nil)

// commandNames lists the words offered for the first position.
var commandNames = []string{"categories", "category", "clear", "copy", "exit", "help", "raw", "retry", "search", "show", "theme"}

// Completer provides tab completion for session commands and their arguments.
type Completer struct {
	session *Session
}

// NewCompleter creates a completer that draws versions from the session's loaded releases.
func NewCompleter(session *Session) *Completer {
	return &Completer{session: session}
}

// Do implements the readline.AutoCompleter interface.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, offset int) {
	if pos > len(line) {
		pos = len(line)
	}
	input := string(line[:pos])

	wordStart := strings.LastIndex(input, " ") + 1
	current := input[wordStart:]
	fields := strings.Fields(input[:wordStart])

	var candidates []string
	if len(fields) == 0 {
		candidates = commandNames
	} else if len(fields) == 1 {
		candidates = c.argumentsFor(fields[0])
	}

	var suggestions [][]rune
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, current) {
			suggestions = append(suggestions, []rune(candidate[len(current):]+" "))
		}
	}
	return suggestions, len([]rune(current))
}

func (c *Completer) argumentsFor(command string) []string {
	switch strings.ToLower(command) {
	case "category":
		options := []string{"all"}
		for _, info := range releasetypes.Categories() {
			options = append(options, info.Key.String())
		}
		sort.Strings(options)
		return options
	case "theme":
		return []string{releasetypes.ThemeDark.String(), releasetypes.ThemeLight.String(), "toggle"}
	case "copy":
		if c.session == nil {
			return []string{"latest"}
		}
		return append([]string{"latest"}, c.session.Versions()...)
	case "search", "/":
		if c.session == nil {
			return nil
		}
		return c.session.svc.Search.Suggestions()
	default:
		return nil
	}
}
