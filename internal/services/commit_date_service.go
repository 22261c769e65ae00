package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"ccreleases/internal/dates"
	"ccreleases/internal/logger"
)

// Commit history defaults for the Claude Code repository.
const (
	DefaultCommitsAPIURL  = "https://api.github.com/repos/anthropics/claude-code/commits"
	DefaultChangelogPath  = "CHANGELOG.md"
	DefaultCommitsPerPage = 100
)

// CommitDateService resolves release dates from the commit history of the changelog file.
//
// It assumes the Nth most recent commit touching the file added the Nth newest version.
// That pairing is a heuristic: a commit that adds several versions, or an edit to an old
// section, shifts every later date.
type CommitDateService struct {
	initialized bool
	http        *HTTPRequestService
	apiURL      string
	path        string
	perPage     int
	logger      *log.Logger
}

// NewCommitDateService creates a resolver backed by the given HTTP service.
// Empty or non-positive arguments fall back to the package defaults.
func NewCommitDateService(http *HTTPRequestService, apiURL, path string, perPage int) *CommitDateService {
	if apiURL == "" {
		apiURL = DefaultCommitsAPIURL
	}
	if path == "" {
		path = DefaultChangelogPath
	}
	if perPage <= 0 {
		perPage = DefaultCommitsPerPage
	}
	return &CommitDateService{
		http:    http,
		apiURL:  apiURL,
		path:    path,
		perPage: perPage,
	}
}

// Name returns the service name "commit_date" for registration.
func (s *CommitDateService) Name() string {
	return "commit_date"
}

// Initialize prepares the component logger.
func (s *CommitDateService) Initialize() error {
	if s.http == nil {
		return fmt.Errorf("commit date service requires an http request service")
	}
	s.logger = logger.NewStyledLogger("Resolver")
	s.initialized = true
	return nil
}

// RequestURL returns the commit-history URL queried by Resolve.
func (s *CommitDateService) RequestURL() (string, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid commits API URL %q: %w", s.apiURL, err)
	}
	q := u.Query()
	q.Set("path", s.path)
	q.Set("per_page", strconv.Itoa(s.perPage))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Resolve maps versions (newest first) to "Mon D, YYYY" dates taken from the author
// timestamps of the most recent commits. It never fails: transport errors, non-2xx
// responses and malformed bodies produce an empty or partial map.
func (s *CommitDateService) Resolve(ctx context.Context, versionsNewestFirst []string) map[string]string {
	resolved := make(map[string]string)
	if len(versionsNewestFirst) == 0 {
		return resolved
	}
	if !s.initialized {
		logger.Warn("Commit date resolution skipped, service not initialized")
		return resolved
	}

	requestURL, err := s.RequestURL()
	if err != nil {
		s.logger.Warn("Commit date resolution skipped", "error", err)
		return resolved
	}

	resp, err := s.http.Get(ctx, requestURL, map[string]string{
		"Accept": "application/vnd.github+json",
	})
	if err != nil {
		s.logger.Warn("Commit history request failed", "url", requestURL, "error", err)
		return resolved
	}
	if !resp.IsSuccess() {
		s.logger.Warn("Commit history request returned failure status", "url", requestURL, "status", resp.Status)
		return resolved
	}
	if !gjson.Valid(resp.Body) {
		s.logger.Warn("Commit history response is not valid JSON", "url", requestURL)
		return resolved
	}

	commits := gjson.Parse(resp.Body)
	if !commits.IsArray() {
		s.logger.Warn("Commit history response is not an array", "url", requestURL)
		return resolved
	}

	list := commits.Array()
	n := min(len(list), len(versionsNewestFirst))
	for i := 0; i < n; i++ {
		authorDate := list[i].Get("commit.author.date").String()
		if formatted := dates.FormatReleaseDate(authorDate); formatted != "" {
			resolved[versionsNewestFirst[i]] = formatted
		}
	}

	s.logger.Debug("Paired commits with versions", "commits", len(list), "versions", len(versionsNewestFirst), "resolved", len(resolved))
	return resolved
}

// GetGlobalCommitDateService returns the commit date service from the global registry.
func GetGlobalCommitDateService() (*CommitDateService, error) {
	return getGlobalService[*CommitDateService]("commit_date")
}
