// Package releasetypes defines the category taxonomy used to classify changelog entries.
package releasetypes

import "strings"

// Category identifies a classification bucket for release entries.
type Category string

const (
	// CategoryBugfixes covers fixes and patches
	CategoryBugfixes Category = "bugfixes"

	// CategoryPerformance covers speed and resource improvements
	CategoryPerformance Category = "performance"

	// CategoryDevX covers developer experience and tooling
	CategoryDevX Category = "devx"

	// CategoryFeatures covers new functionality
	CategoryFeatures Category = "features"
)

// DefaultCategory is assigned when no keyword of any category matches.
const DefaultCategory = CategoryFeatures

// CategoryInfo holds display metadata and matching keywords for a category.
type CategoryInfo struct {
	Key      Category `yaml:"key" json:"key"`
	Label    string   `yaml:"label" json:"label"`
	Color    string   `yaml:"color" json:"color"`
	Icon     string   `yaml:"icon" json:"icon"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// CompleteWordKeywords must match as a whole word on both sides.
// They are short enough to appear inside ordinary words ("index", "click", "performed").
var CompleteWordKeywords = map[string]bool{
	"perf": true,
	"dx":   true,
	"cli":  true,
}

// taxonomy is listed in classification priority order.
var taxonomy = []CategoryInfo{
	{
		Key:      CategoryBugfixes,
		Label:    "Bug Fixes",
		Color:    "#788c5d",
		Icon:     "🐛",
		Keywords: []string{"fix", "bug", "resolve", "patch"},
	},
	{
		Key:      CategoryPerformance,
		Label:    "Performance",
		Color:    "#d97757",
		Icon:     "⚡",
		Keywords: []string{"perf", "fast", "speed", "optimize", "reduce", "reduced"},
	},
	{
		Key:      CategoryDevX,
		Label:    "DevX",
		Color:    "#9b8bb0",
		Icon:     "🔧",
		Keywords: []string{"dx", "developer", "tooling", "cli", "improve", "improved"},
	},
	{
		Key:      CategoryFeatures,
		Label:    "Features",
		Color:    "#6a9bcc",
		Icon:     "✨",
		Keywords: []string{"add", "new", "feature", "support"},
	},
}

// displayOrder is the order in which category groups are rendered.
var displayOrder = []Category{
	CategoryFeatures,
	CategoryBugfixes,
	CategoryPerformance,
	CategoryDevX,
}

// Categories returns a copy of the taxonomy in classification priority order.
func Categories() []CategoryInfo {
	result := make([]CategoryInfo, len(taxonomy))
	for i, info := range taxonomy {
		info.Keywords = append([]string(nil), info.Keywords...)
		result[i] = info
	}
	return result
}

// DisplayOrder returns the category keys in rendering order.
func DisplayOrder() []Category {
	return append([]Category(nil), displayOrder...)
}

// LookupCategory returns the metadata for a category key.
// Unknown keys resolve to the default category so callers always get displayable metadata.
func LookupCategory(c Category) CategoryInfo {
	for _, info := range taxonomy {
		if info.Key == c {
			return info
		}
	}
	for _, info := range taxonomy {
		if info.Key == DefaultCategory {
			return info
		}
	}
	return CategoryInfo{Key: DefaultCategory}
}

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if a category is a member of the taxonomy.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBugfixes, CategoryPerformance, CategoryDevX, CategoryFeatures:
		return true
	default:
		return false
	}
}

// ParseCategory converts user input to a Category, accepting keys and labels case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, info := range taxonomy {
		if strings.EqualFold(s, string(info.Key)) || strings.EqualFold(s, info.Label) {
			return info.Key, true
		}
	}
	return "", false
}
