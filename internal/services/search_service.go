package services

import (
	"strings"

	"ccreleases/pkg/releasetypes"
)

// SearchResult is the outcome of filtering releases by a query.
type SearchResult struct {
	Query        string                 // trimmed query
	Releases     []releasetypes.Release // releases with at least one match, matching entries only
	MatchCount   int                    // matching entries across all releases
	ReleaseCount int                    // releases with at least one match
}

// Active reports whether the query filtered anything.
func (r SearchResult) Active() bool {
	return r.Query != ""
}

// SearchService filters release timelines by free text or category.
type SearchService struct {
	initialized bool
}

// NewSearchService creates a new SearchService instance.
func NewSearchService() *SearchService {
	return &SearchService{}
}

// Name returns the service name "search" for registration.
func (s *SearchService) Name() string {
	return "search"
}

// Initialize sets up the SearchService for operation.
func (s *SearchService) Initialize() error {
	s.initialized = true
	return nil
}

// Filter keeps the entries whose content contains query, case-insensitively.
// A blank query returns the input unchanged with zero counts.
// Input releases are never modified.
func (s *SearchService) Filter(releases []releasetypes.Release, query string) SearchResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return SearchResult{Releases: releases}
	}

	needle := strings.ToLower(trimmed)
	return s.filterEntries(releases, trimmed, func(entry releasetypes.ReleaseEntry) bool {
		return strings.Contains(strings.ToLower(entry.Content), needle)
	})
}

// FilterByCategory keeps only entries of the given category.
func (s *SearchService) FilterByCategory(releases []releasetypes.Release, category releasetypes.Category) SearchResult {
	return s.filterEntries(releases, category.String(), func(entry releasetypes.ReleaseEntry) bool {
		return entry.Category == category
	})
}

// Suggestions returns the queries offered when a search has no results.
func (s *SearchService) Suggestions() []string {
	return []string{"MCP", "hooks", "performance"}
}

// FindRelease returns the release with the given version. "latest" selects the first release.
func (s *SearchService) FindRelease(releases []releasetypes.Release, version string) (releasetypes.Release, bool) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if strings.EqualFold(version, "latest") {
		if len(releases) == 0 {
			return releasetypes.Release{}, false
		}
		return releases[0], true
	}
	for _, release := range releases {
		if release.Version == version {
			return release, true
		}
	}
	return releasetypes.Release{}, false
}

func (s *SearchService) filterEntries(releases []releasetypes.Release, query string, keep func(releasetypes.ReleaseEntry) bool) SearchResult {
	result := SearchResult{
		Query:    query,
		Releases: []releasetypes.Release{},
	}

	for _, release := range releases {
		var matched []releasetypes.ReleaseEntry
		for _, entry := range release.Entries {
			if keep(entry) {
				matched = append(matched, entry)
			}
		}
		if len(matched) == 0 {
			continue
		}
		result.Releases = append(result.Releases, releasetypes.Release{
			Version: release.Version,
			Date:    release.Date,
			Entries: matched,
		})
		result.MatchCount += len(matched)
	}

	result.ReleaseCount = len(result.Releases)
	return result
}

// GetGlobalSearchService returns the search service from the global registry.
func GetGlobalSearchService() (*SearchService, error) {
	return getGlobalService[*SearchService]("search")
}
