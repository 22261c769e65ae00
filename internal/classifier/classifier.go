// Package classifier assigns changelog entries to a category of the release taxonomy
// using keyword heuristics.
package classifier

import (
	"regexp"

	"ccreleases/pkg/releasetypes"
)

type categoryPatterns struct {
	category releasetypes.Category
	patterns []*regexp.Regexp
}

// compiled is derived once from the static taxonomy and never mutated.
var compiled = compile(releasetypes.Categories())

func compile(categories []releasetypes.CategoryInfo) []categoryPatterns {
	result := make([]categoryPatterns, 0, len(categories))
	for _, info := range categories {
		cp := categoryPatterns{category: info.Key}
		for _, keyword := range info.Keywords {
			cp.patterns = append(cp.patterns, keywordPattern(keyword))
		}
		result = append(result, cp)
	}
	return result
}

// keywordPattern matches a keyword at a left word boundary, or as a whole word for
// the short keywords listed in releasetypes.CompleteWordKeywords.
func keywordPattern(keyword string) *regexp.Regexp {
	expr := `(?i)\b` + regexp.QuoteMeta(keyword)
	if releasetypes.CompleteWordKeywords[keyword] {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

// Classify returns the first category, in taxonomy priority order, with a keyword
// matching content. It falls back to releasetypes.DefaultCategory.
func Classify(content string) releasetypes.Category {
	if content == "" {
		return releasetypes.DefaultCategory
	}
	for _, cp := range compiled {
		for _, pattern := range cp.patterns {
			if pattern.MatchString(content) {
				return cp.category
			}
		}
	}
	return releasetypes.DefaultCategory
}

// MatchedKeyword reports which keyword decided the classification of content.
// The second result is false when the default category was used.
func MatchedKeyword(content string) (string, bool) {
	for _, info := range releasetypes.Categories() {
		for i, pattern := range patternsFor(info.Key) {
			if pattern.MatchString(content) {
				return info.Keywords[i], true
			}
		}
	}
	return "", false
}

func patternsFor(category releasetypes.Category) []*regexp.Regexp {
	for _, cp := range compiled {
		if cp.category == category {
			return cp.patterns
		}
	}
	return nil
}
