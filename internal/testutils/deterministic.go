// Package testutils provides deterministic generators and golden-file helpers for ccreleases tests.
package testutils

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex
)

// GenerateUUID generates a UUID that is deterministic in test mode but random in production.
func GenerateUUID(testMode bool) string {
	if testMode {
		return DeterministicUUID()
	}
	return uuid.New().String()
}

// DeterministicUUID returns UUIDs in v4 layout from an incrementing counter:
// 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, ...
func DeterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// ResetTestCounters resets the deterministic counters.
func ResetTestCounters() {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter = 0
}
