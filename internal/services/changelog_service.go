package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ccreleases/internal/logger"
	"ccreleases/internal/parser"
	"ccreleases/internal/versionsort"
	"ccreleases/pkg/releasetypes"
)

// DefaultChangelogURL is the raw Claude Code changelog document.
const DefaultChangelogURL = "https://raw.githubusercontent.com/anthropics/claude-code/main/CHANGELOG.md"

// ErrSuperseded is returned by Load when a newer attempt started before this one finished.
// The attempt's result is discarded and the returned State is the current one.
var ErrSuperseded = errors.New("load attempt superseded by a newer attempt")

// FetchErrorKind distinguishes failures for user-facing copy.
type FetchErrorKind string

const (
	FetchErrorNetwork FetchErrorKind = "network"
	FetchErrorStatus  FetchErrorKind = "status"
	FetchErrorTimeout FetchErrorKind = "timeout"
	FetchErrorParse   FetchErrorKind = "parse"
	FetchErrorUnknown FetchErrorKind = "unknown"
)

// FetchError is returned when the changelog document cannot be fetched or parsed.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // set for FetchErrorStatus
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("changelog %s error", e.Kind)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var userMessages = map[FetchErrorKind]string{
	FetchErrorNetwork: "Unable to load release notes. Please check your internet connection and try again.",
	FetchErrorStatus:  "Unable to load release notes. Please check your internet connection and try again.",
	FetchErrorTimeout: "Loading is taking longer than expected. Please try again.",
	FetchErrorParse:   "Something went wrong while processing the release notes. Please try again.",
	FetchErrorUnknown: "Unable to load release notes. Please try again.",
}

// ErrorKind reports the kind of a load error. Errors that are not a *FetchError are
// parse errors when they wrap parser.ErrParse and unknown otherwise.
func ErrorKind(err error) FetchErrorKind {
	var fetchErr *FetchError
	switch {
	case errors.As(err, &fetchErr):
		return fetchErr.Kind
	case errors.Is(err, parser.ErrParse):
		return FetchErrorParse
	default:
		return FetchErrorUnknown
	}
}

// UserMessage returns the human-readable copy shown for a load error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return userMessages[ErrorKind(err)]
}

// classifyTransportError wraps an error returned by the HTTP client.
func classifyTransportError(err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &FetchError{Kind: FetchErrorTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: FetchErrorTimeout, Err: err}
	case errors.As(err, &netErr):
		return &FetchError{Kind: FetchErrorNetwork, Err: err}
	default:
		return &FetchError{Kind: FetchErrorUnknown, Err: err}
	}
}

// Attempt identifies one fetch-and-parse cycle.
type Attempt struct {
	Seq   uint64 // monotonically increasing per service
	Token string // uuid for log correlation
}

// State is the tri-state view of the latest attempt.
type State struct {
	Status   releasetypes.LoadStatus
	Releases []releasetypes.Release // newest first; empty unless Status is success
	Err      error                  // set when Status is error
	Attempt  Attempt
}

// ChangelogService fetches and parses the changelog and holds the latest result.
// Only the most recently started attempt may commit its result.
type ChangelogService struct {
	initialized bool
	http        *HTTPRequestService
	resolver    parser.DateResolver
	parser      *parser.Parser
	url         string
	newToken    func() string
	tracer      trace.Tracer
	logger      *log.Logger

	mu    sync.Mutex
	seq   uint64
	state State
}

// NewChangelogService creates the orchestrator. A nil resolver disables commit-date enrichment
// and an empty url selects DefaultChangelogURL.
func NewChangelogService(http *HTTPRequestService, resolver parser.DateResolver, url string) *ChangelogService {
	if url == "" {
		url = DefaultChangelogURL
	}
	return &ChangelogService{
		http:     http,
		resolver: resolver,
		url:      url,
		newToken: uuid.NewString,
		state:    State{Status: releasetypes.LoadStatusLoading},
	}
}

// Name returns the service name "changelog" for registration.
func (s *ChangelogService) Name() string {
	return "changelog"
}

// Initialize builds the parser and tracer.
func (s *ChangelogService) Initialize() error {
	if s.http == nil {
		return fmt.Errorf("changelog service requires an http request service")
	}
	s.parser = parser.New(s.resolver)
	s.tracer = otel.Tracer("ccreleases/changelog")
	s.logger = logger.NewStyledLogger("Changelog")
	s.initialized = true
	return nil
}

// SetTokenGenerator replaces the attempt token source.
func (s *ChangelogService) SetTokenGenerator(generate func() string) {
	if generate != nil {
		s.newToken = generate
	}
}

// URL returns the changelog document URL.
func (s *ChangelogService) URL() string {
	return s.url
}

// State returns the state of the latest attempt.
func (s *ChangelogService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load runs one fetch-and-parse attempt and commits its result if no newer attempt has
// started meanwhile. A stale attempt returns the current state and ErrSuperseded.
func (s *ChangelogService) Load(ctx context.Context) (State, error) {
	if !s.initialized {
		return State{}, fmt.Errorf("changelog service not initialized")
	}

	attempt := s.begin()

	ctx, span := s.tracer.Start(ctx, "changelog.load",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("attempt.seq", int64(attempt.Seq)),
			attribute.String("attempt.token", attempt.Token),
			attribute.String("changelog.url", s.url),
		),
	)
	defer span.End()

	s.logger.Debug("Loading changelog", "attempt", attempt.Seq, "token", attempt.Token, "url", s.url)

	releases, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("changelog.releases", len(releases)))
	}

	return s.commit(attempt, releases, err)
}

// Retry discards the previous result and starts a new attempt.
func (s *ChangelogService) Retry(ctx context.Context) (State, error) {
	if s.initialized {
		s.logger.Info("Retrying changelog load")
	}
	return s.Load(ctx)
}

func (s *ChangelogService) begin() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	attempt := Attempt{Seq: s.seq, Token: s.newToken()}
	s.state = State{Status: releasetypes.LoadStatusLoading, Attempt: attempt}
	return attempt
}

func (s *ChangelogService) commit(attempt Attempt, releases []releasetypes.Release, err error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.Seq != s.seq {
		s.logger.Debug("Discarding stale attempt", "attempt", attempt.Seq, "latest", s.seq, "token", attempt.Token)
		return s.state, ErrSuperseded
	}

	if err != nil {
		s.logger.Warn("Changelog load failed", "attempt", attempt.Seq, "error", err)
		s.state = State{Status: releasetypes.LoadStatusError, Err: err, Attempt: attempt}
		return s.state, err
	}

	if releases == nil {
		releases = []releasetypes.Release{}
	}
	s.state = State{Status: releasetypes.LoadStatusSuccess, Releases: releases, Attempt: attempt}
	s.logger.Debug("Changelog loaded", "attempt", attempt.Seq, "releases", len(releases))
	return s.state, nil
}

func (s *ChangelogService) fetch(ctx context.Context) ([]releasetypes.Release, error) {
	resp, err := s.http.Get(ctx, s.url, map[string]string{"Accept": "text/markdown, text/plain"})
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{
			Kind:       FetchErrorStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to fetch changelog: %s", resp.Status),
		}
	}

	releases, err := s.parser.Parse(ctx, resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorParse, Err: err}
	}
	return versionsort.SortReleases(releases), nil
}

// GetGlobalChangelogService returns the changelog service from the global registry.
func GetGlobalChangelogService() (*ChangelogService, error) {
	return getGlobalService[*ChangelogService]("changelog")
}
