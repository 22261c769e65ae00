package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccreleases/internal/parser"
	"ccreleases/internal/testutils"
	"ccreleases/pkg/releasetypes"
)

const changelogFixture = `# Changelog

## 1.0.9

_Released 2025-01-05_

- Fix crash on startup

## 1.0.10

- Add hooks support
- Reduced memory usage
`

type fixedResolver map[string]string

func (r fixedResolver) Resolve(_ context.Context, _ []string) map[string]string {
	return r
}

func newTestChangelogService(t *testing.T, url string, resolver parser.DateResolver) *ChangelogService {
	t.Helper()
	httpService := NewHTTPRequestService()
	require.NoError(t, httpService.Initialize())

	service := NewChangelogService(httpService, resolver, url)
	service.SetTokenGenerator(testutils.DeterministicUUID)
	require.NoError(t, service.Initialize())
	return service
}

func TestNewChangelogService_Defaults(t *testing.T) {
	service := NewChangelogService(NewHTTPRequestService(), nil, "")
	assert.Equal(t, "changelog", service.Name())
	assert.Equal(t, DefaultChangelogURL, service.URL())
	assert.Equal(t, releasetypes.LoadStatusLoading, service.State().Status)
}

func TestChangelogService_InitializeRequiresHTTP(t *testing.T) {
	assert.Error(t, NewChangelogService(nil, nil, "").Initialize())
}

func TestChangelogService_LoadUninitialized(t *testing.T) {
	_, err := NewChangelogService(NewHTTPRequestService(), nil, "").Load(context.Background())
	assert.Error(t, err)
}

func TestChangelogService_LoadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(changelogFixture))
	}))
	defer server.Close()

	testutils.ResetTestCounters()
	service := newTestChangelogService(t, server.URL, fixedResolver{"1.0.10": "Jan 12, 2025", "1.0.9": "Jan 1, 2025"})

	state, err := service.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, releasetypes.LoadStatusSuccess, state.Status)
	assert.NoError(t, state.Err)
	assert.Equal(t, uint64(1), state.Attempt.Seq)
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", state.Attempt.Token)

	require.Len(t, state.Releases, 2)
	assert.Equal(t, "1.0.10", state.Releases[0].Version)
	assert.Equal(t, "Jan 12, 2025", state.Releases[0].Date)
	assert.Equal(t, "1.0.9", state.Releases[1].Version)
	assert.Equal(t, "2025-01-05", state.Releases[1].Date)
	assert.Equal(t, releasetypes.CategoryBugfixes, state.Releases[1].Entries[0].Category)

	assert.Equal(t, state, service.State())
}

func TestChangelogService_LoadEmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain prose, no headers"))
	}))
	defer server.Close()

	service := newTestChangelogService(t, server.URL, nil)

	state, err := service.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, releasetypes.LoadStatusSuccess, state.Status)
	assert.NotNil(t, state.Releases)
	assert.Empty(t, state.Releases)
}

func TestChangelogService_LoadStatusFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	service := newTestChangelogService(t, server.URL, nil)

	state, err := service.Load(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, FetchErrorStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")

	assert.Equal(t, releasetypes.LoadStatusError, state.Status)
	assert.Equal(t, err, state.Err)
	assert.Empty(t, state.Releases)
	assert.Equal(t, userMessages[FetchErrorNetwork], UserMessage(state.Err))
}

func TestChangelogService_LoadNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	closedURL := server.URL
	server.Close()

	service := newTestChangelogService(t, closedURL, nil)

	state, err := service.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, FetchErrorNetwork, ErrorKind(err))
	assert.Equal(t, releasetypes.LoadStatusError, state.Status)
}

func TestChangelogService_LoadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	service := newTestChangelogService(t, server.URL, nil)
	service.http.SetTimeout(50 * time.Millisecond)

	_, err := service.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, FetchErrorTimeout, ErrorKind(err))
	assert.Equal(t, "Loading is taking longer than expected. Please try again.", UserMessage(err))
}

func TestChangelogService_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(changelogFixture))
	}))
	defer server.Close()

	service := newTestChangelogService(t, server.URL, nil)

	state, err := service.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, releasetypes.LoadStatusError, state.Status)

	state, err = service.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, releasetypes.LoadStatusSuccess, state.Status)
	assert.Equal(t, uint64(2), state.Attempt.Seq)
	assert.Len(t, state.Releases, 2)
}

func TestChangelogService_StaleAttemptDiscarded(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			_, _ = w.Write([]byte("## 0.0.1\n\n- Old entry\n"))
			return
		}
		_, _ = w.Write([]byte(changelogFixture))
	}))
	defer server.Close()

	service := newTestChangelogService(t, server.URL, nil)

	var (
		wg         sync.WaitGroup
		staleState State
		staleErr   error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		staleState, staleErr = service.Load(context.Background())
	}()

	<-started
	fresh, err := service.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fresh.Attempt.Seq)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, staleErr, ErrSuperseded)
	assert.Equal(t, fresh, staleState)

	current := service.State()
	assert.Equal(t, uint64(2), current.Attempt.Seq)
	require.Len(t, current.Releases, 2)
	assert.Equal(t, "1.0.10", current.Releases[0].Version)
}

func TestErrorKindAndUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    FetchErrorKind
		message string
	}{
		{
			name:    "network",
			err:     &FetchError{Kind: FetchErrorNetwork, Err: errors.New("dial tcp: connection refused")},
			kind:    FetchErrorNetwork,
			message: "Unable to load release notes. Please check your internet connection and try again.",
		},
		{
			name:    "status uses network copy",
			err:     &FetchError{Kind: FetchErrorStatus, StatusCode: 500, Err: errors.New("failed to fetch changelog: 500")},
			kind:    FetchErrorStatus,
			message: "Unable to load release notes. Please check your internet connection and try again.",
		},
		{
			name:    "timeout",
			err:     fmt.Errorf("load: %w", &FetchError{Kind: FetchErrorTimeout, Err: context.DeadlineExceeded}),
			kind:    FetchErrorTimeout,
			message: "Loading is taking longer than expected. Please try again.",
		},
		{
			name:    "wrapped parse error",
			err:     &FetchError{Kind: FetchErrorParse, Err: &parser.ParseError{Cause: errors.New("boom")}},
			kind:    FetchErrorParse,
			message: "Something went wrong while processing the release notes. Please try again.",
		},
		{
			name:    "bare parse error",
			err:     &parser.ParseError{Cause: errors.New("boom")},
			kind:    FetchErrorParse,
			message: "Something went wrong while processing the release notes. Please try again.",
		},
		{
			name:    "unknown",
			err:     errors.New("something else"),
			kind:    FetchErrorUnknown,
			message: "Unable to load release notes. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, ErrorKind(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
		})
	}

	assert.Empty(t, UserMessage(nil))
}

func TestClassifyTransportError(t *testing.T) {
	assert.Equal(t, FetchErrorTimeout, classifyTransportError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)).Kind)
	assert.Equal(t, FetchErrorTimeout, classifyTransportError(context.Canceled).Kind)
	assert.Equal(t, FetchErrorUnknown, classifyTransportError(errors.New("odd")).Kind)
}

func TestFetchError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &FetchError{Kind: FetchErrorNetwork, Err: cause}
	assert.Equal(t, "cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "changelog unknown error", (&FetchError{Kind: FetchErrorUnknown}).Error())
}
