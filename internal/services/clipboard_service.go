package services

import (
	"fmt"
	"strings"

	"ccreleases/internal/logger"
)

// CopyResult reports what happened to a copy request.
type CopyResult struct {
	Copied bool   // text reached the system clipboard
	Chars  int    // characters in the text
	Reason string // why the clipboard could not be used, when Copied is false
}

// ClipboardService copies release notes to the system clipboard when the platform allows it.
type ClipboardService struct {
	initialized bool
	available   bool
	reason      string
	write       func(string) error
}

// NewClipboardService creates a new ClipboardService instance.
func NewClipboardService() *ClipboardService {
	return &ClipboardService{write: writeToClipboard}
}

// Name returns the service name "clipboard" for registration.
func (c *ClipboardService) Name() string {
	return "clipboard"
}

// Initialize probes the platform clipboard. An unavailable clipboard is not an error.
func (c *ClipboardService) Initialize() error {
	c.initialized = true
	if !clipboardAvailable {
		c.reason = "clipboard not available on this platform"
		return nil
	}
	if err := initClipboard(); err != nil {
		c.reason = fmt.Sprintf("clipboard initialization failed: %v", err)
		logger.Debug("Clipboard unavailable", "error", err)
		return nil
	}
	c.available = true
	return nil
}

// Available reports whether Copy can reach the system clipboard.
func (c *ClipboardService) Available() bool {
	return c.available
}

// SetWriter replaces the clipboard writer and marks the clipboard available.
func (c *ClipboardService) SetWriter(write func(string) error) {
	c.write = write
	c.available = write != nil
	c.reason = ""
}

// Copy writes text to the clipboard. When the clipboard is unavailable the result carries
// the reason and the caller is expected to print the text instead.
func (c *ClipboardService) Copy(text string) (CopyResult, error) {
	if !c.initialized {
		return CopyResult{}, fmt.Errorf("clipboard service not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return CopyResult{}, fmt.Errorf("nothing to copy")
	}

	result := CopyResult{Chars: len([]rune(text))}
	if !c.available {
		result.Reason = c.reason
		return result, nil
	}
	if err := c.write(text); err != nil {
		result.Reason = fmt.Sprintf("failed to write to clipboard: %v", err)
		return result, nil
	}
	result.Copied = true
	return result, nil
}

// GetGlobalClipboardService returns the clipboard service from the global registry.
func GetGlobalClipboardService() (*ClipboardService, error) {
	return getGlobalService[*ClipboardService]("clipboard")
}
