package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ccreleases/internal/logger"
	"ccreleases/internal/version"
)

// HTTPRequestService performs the GET requests used to fetch the changelog and its commit history.
// The client transport is instrumented with otelhttp.
type HTTPRequestService struct {
	initialized bool
	timeout     time.Duration
	client      *http.Client
	transport   http.RoundTripper
}

// HTTPRequest represents an HTTP request configuration.
type HTTPRequest struct {
	Method  string            // HTTP method, GET when empty
	URL     string            // Request URL
	Headers map[string]string // HTTP headers
}

// HTTPResponse represents an HTTP response.
type HTTPResponse struct {
	StatusCode int               // HTTP status code
	Status     string            // HTTP status message
	Headers    map[string]string // Response headers, first value only
	Body       string            // Response body
}

// IsSuccess reports whether the status code is 2xx.
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewHTTPRequestService creates a new HTTPRequestService with a 30 second timeout.
func NewHTTPRequestService() *HTTPRequestService {
	return &HTTPRequestService{
		initialized: false,
		timeout:     30 * time.Second,
	}
}

// Name returns the service name "http_request" for registration.
func (h *HTTPRequestService) Name() string {
	return "http_request"
}

// Initialize sets up the HTTP client.
func (h *HTTPRequestService) Initialize() error {
	base := h.transport
	if base == nil {
		base = http.DefaultTransport
	}
	h.client = &http.Client{
		Timeout:   h.timeout,
		Transport: otelhttp.NewTransport(base),
	}
	h.initialized = true
	logger.Debug("HTTPRequestService initialized", "timeout", h.timeout.String())
	return nil
}

// SetTimeout configures the request timeout. Zero or negative values are ignored.
func (h *HTTPRequestService) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	oldTimeout := h.timeout
	h.timeout = timeout
	if h.client != nil {
		h.client.Timeout = timeout
	}
	logger.Debug("HTTP request timeout updated", "old_timeout", oldTimeout.String(), "new_timeout", timeout.String())
}

// SetTransport replaces the base round tripper; it takes effect on the next Initialize.
func (h *HTTPRequestService) SetTransport(transport http.RoundTripper) {
	h.transport = transport
}

// SendRequest sends an HTTP request and returns the response.
// Non-2xx responses are returned without error; callers decide what a failure status means.
func (h *HTTPRequestService) SendRequest(ctx context.Context, request HTTPRequest) (*HTTPResponse, error) {
	if !h.initialized {
		logger.Error("HTTP request attempted on uninitialized service")
		return nil, fmt.Errorf("http request service not initialized")
	}

	if request.URL == "" {
		logger.Error("HTTP request attempted with empty URL")
		return nil, fmt.Errorf("URL is required")
	}

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	logger.Debug("Starting HTTP request",
		"method", method,
		"url", request.URL,
		"timeout", h.timeout.String(),
		"headers_count", len(request.Headers))

	httpReq, err := http.NewRequestWithContext(ctx, method, request.URL, nil)
	if err != nil {
		logger.Error("Failed to create HTTP request", "error", err, "method", method, "url", request.URL)
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("User-Agent", "ccreleases/"+version.GetBaseVersion())
	for key, value := range request.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		logger.Debug("Failed to execute HTTP request", "error", err, "method", method, "url", request.URL)
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response body", "error", err, "url", request.URL, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	logger.Debug("HTTP request completed",
		"method", method,
		"url", request.URL,
		"status_code", resp.StatusCode,
		"body_length", len(bodyBytes))

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    responseHeaders,
		Body:       string(bodyBytes),
	}, nil
}

// Get performs a simple GET request.
func (h *HTTPRequestService) Get(ctx context.Context, url string, headers map[string]string) (*HTTPResponse, error) {
	return h.SendRequest(ctx, HTTPRequest{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})
}

// GetGlobalHTTPRequestService returns the HTTP request service from the global registry.
func GetGlobalHTTPRequestService() (*HTTPRequestService, error) {
	return getGlobalService[*HTTPRequestService]("http_request")
}
