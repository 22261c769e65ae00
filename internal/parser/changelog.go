// Package parser turns a raw markdown changelog into ordered release records.
package parser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"ccreleases/internal/classifier"
	"ccreleases/internal/logger"
	"ccreleases/internal/versionsort"
	"ccreleases/pkg/releasetypes"
)

// ErrParse is matched by every structural parse failure.
var ErrParse = errors.New("failed to parse changelog")

// ParseError reports a tokenizer or structural failure. Commit-date resolution
// never produces one.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// DateResolver supplies best-effort dates for versions listed newest first.
// Implementations must not fail; they return an empty or partial map instead.
type DateResolver interface {
	Resolve(ctx context.Context, versionsNewestFirst []string) map[string]string
}

// releasedPattern matches the "_Released YYYY-MM-DD_" paragraph convention.
var releasedPattern = regexp.MustCompile(`_Released (\d{4}-\d{2}-\d{2})_`)

// Parser converts changelog markdown into releases.
type Parser struct {
	markdown goldmark.Markdown
	resolver DateResolver
	logger   *log.Logger
}

// New creates a Parser. A nil resolver disables commit-date enrichment.
func New(resolver DateResolver) *Parser {
	return &Parser{
		markdown: goldmark.New(),
		resolver: resolver,
		logger:   logger.NewStyledLogger("Parser"),
	}
}

// Parse tokenizes markdown, builds releases in document order and fills dates that the
// document omits from the resolver. Explicit dates are never overwritten.
// Empty input and input without version headers yield an empty slice and no error.
func (p *Parser) Parse(ctx context.Context, markdown string) ([]releasetypes.Release, error) {
	releases, err := p.ParseStructure(markdown)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 || p.resolver == nil {
		return releases, nil
	}

	versions := versionsort.Versions(releases)
	resolved := p.resolver.Resolve(ctx, versions)
	p.logger.Debug("Resolved commit dates", "versions", len(versions), "resolved", len(resolved))

	for i := range releases {
		if releases[i].Date != "" {
			continue
		}
		if date, ok := resolved[releases[i].Version]; ok {
			releases[i].Date = date
		}
	}

	return releases, nil
}

// ParseStructure performs the token walk only, without commit-date enrichment.
func (p *Parser) ParseStructure(markdown string) (releases []releasetypes.Release, err error) {
	releases = []releasetypes.Release{}
	if strings.TrimSpace(markdown) == "" {
		return releases, nil
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Tokenizer panicked", "error", r)
			releases = nil
			err = &ParseError{Cause: fmt.Errorf("%v", r)}
		}
	}()

	source := []byte(markdown)
	doc := p.markdown.Parser().Parse(text.NewReader(source))
	if doc == nil {
		return nil, &ParseError{Cause: errors.New("tokenizer returned no document")}
	}

	var current *releasetypes.Release
	flush := func() {
		if current != nil && current.Version != "" {
			releases = append(releases, *current)
		}
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level != 2 {
				continue
			}
			flush()
			current = &releasetypes.Release{
				Version: strings.TrimSpace(linesText(n, source)),
				Entries: []releasetypes.ReleaseEntry{},
			}
		case *ast.Paragraph:
			if current == nil {
				continue
			}
			if match := releasedPattern.FindStringSubmatch(linesText(n, source)); match != nil {
				current.Date = match[1]
			}
		case *ast.List:
			if current == nil {
				continue
			}
			current.Entries = append(current.Entries, listEntries(n, source)...)
		}
	}
	flush()

	p.logger.Debug("Parsed changelog structure", "releases", len(releases))
	return releases, nil
}

func listEntries(list *ast.List, source []byte) []releasetypes.ReleaseEntry {
	var entries []releasetypes.ReleaseEntry
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		content := strings.TrimSpace(itemText(item, source))
		if content == "" {
			continue
		}
		entries = append(entries, releasetypes.ReleaseEntry{
			Content:  content,
			Category: classifier.Classify(content),
		})
	}
	return entries
}

// itemText returns the raw markdown of a list item. Nested list items are rendered
// as "- " lines below the item's own text.
func itemText(item ast.Node, source []byte) string {
	var parts []string
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if nested, ok := child.(*ast.List); ok {
			for sub := nested.FirstChild(); sub != nil; sub = sub.NextSibling() {
				if subText := strings.TrimSpace(itemText(sub, source)); subText != "" {
					parts = append(parts, "- "+subText)
				}
			}
			continue
		}
		if child.Type() == ast.TypeBlock {
			if t := linesText(child, source); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func linesText(node ast.Node, source []byte) string {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		parts = append(parts, strings.TrimRight(string(segment.Value(source)), " \t\r\n"))
	}
	return strings.Join(parts, "\n")
}
