// Package releasetypes defines the changelog data model for ccreleases.
// This file contains the release and entry records produced by the parser.
package releasetypes

// ReleaseEntry is one bullet point from a release section.
// Content is the trimmed raw item text and may still contain inline markdown.
type ReleaseEntry struct {
	Content  string   `yaml:"content" json:"content"`   // Trimmed item text
	Category Category `yaml:"category" json:"category"` // Assigned by the classifier, never empty
}

// Release is one version section of the changelog.
type Release struct {
	Version string         `yaml:"version" json:"version"` // Heading text, usually major.minor.patch
	Date    string         `yaml:"date" json:"date"`       // Explicit YYYY-MM-DD, resolved "Mon D, YYYY", or empty
	Entries []ReleaseEntry `yaml:"entries" json:"entries"` // Document order across every list in the section
}

// EntriesByCategory groups the release entries by category, preserving document order inside each group.
func (r Release) EntriesByCategory() map[Category][]ReleaseEntry {
	groups := make(map[Category][]ReleaseEntry)
	for _, entry := range r.Entries {
		groups[entry.Category] = append(groups[entry.Category], entry)
	}
	return groups
}

// LoadStatus is the tri-state status exposed by the fetch orchestrator.
type LoadStatus string

const (
	// LoadStatusLoading means a fetch and parse attempt is in flight
	LoadStatusLoading LoadStatus = "loading"

	// LoadStatusError means the latest attempt failed and can be retried
	LoadStatusError LoadStatus = "error"

	// LoadStatusSuccess means the latest attempt produced a release list (possibly empty)
	LoadStatusSuccess LoadStatus = "success"
)

// String returns the string representation of a LoadStatus.
func (s LoadStatus) String() string {
	return string(s)
}
