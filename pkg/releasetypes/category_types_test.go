package releasetypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_PriorityOrder(t *testing.T) {
	categories := Categories()
	require.Len(t, categories, 4)

	keys := make([]Category, len(categories))
	for i, info := range categories {
		keys[i] = info.Key
	}
	assert.Equal(t, []Category{CategoryBugfixes, CategoryPerformance, CategoryDevX, CategoryFeatures}, keys)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	categories := Categories()
	categories[0].Keywords[0] = "changed"
	categories[0].Label = "changed"

	fresh := Categories()
	assert.Equal(t, "fix", fresh[0].Keywords[0])
	assert.Equal(t, "Bug Fixes", fresh[0].Label)
}

func TestDisplayOrder(t *testing.T) {
	order := DisplayOrder()
	assert.Equal(t, []Category{CategoryFeatures, CategoryBugfixes, CategoryPerformance, CategoryDevX}, order)

	order[0] = CategoryDevX
	assert.Equal(t, CategoryFeatures, DisplayOrder()[0])
}

func TestLookupCategory(t *testing.T) {
	info := LookupCategory(CategoryPerformance)
	assert.Equal(t, "Performance", info.Label)
	assert.Equal(t, "#d97757", info.Color)

	fallback := LookupCategory(Category("unknown"))
	assert.Equal(t, DefaultCategory, fallback.Key)
	assert.Equal(t, "Features", fallback.Label)
}

func TestCategory_IsValid(t *testing.T) {
	for _, info := range Categories() {
		assert.True(t, info.Key.IsValid(), info.Key)
	}
	assert.False(t, Category("").IsValid())
	assert.False(t, Category("Features").IsValid())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
		ok    bool
	}{
		{"bugfixes", CategoryBugfixes, true},
		{"Bug Fixes", CategoryBugfixes, true},
		{"PERFORMANCE", CategoryPerformance, true},
		{"devx", CategoryDevX, true},
		{"features", CategoryFeatures, true},
		{"security", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompleteWordKeywordsBelongToTaxonomy(t *testing.T) {
	known := map[string]bool{}
	for _, info := range Categories() {
		for _, kw := range info.Keywords {
			known[kw] = true
		}
	}
	for kw := range CompleteWordKeywords {
		assert.True(t, known[kw], kw)
	}
}
