// Package versionsort orders changelog versions newest first.
// It is the single source of truth for release ordering, used both to align commit
// history with versions and to order releases for display.
package versionsort

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"ccreleases/pkg/releasetypes"
)

var triplePattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

var zeroVersion = semver.New(0, 0, 0, "", "")

// Extract returns the first major.minor.patch triple in version as a semver.Version.
// Strings without a triple, or with components that overflow, yield 0.0.0.
func Extract(version string) *semver.Version {
	parts := triplePattern.FindStringSubmatch(version)
	if parts == nil {
		return zeroVersion
	}
	nums := make([]uint64, 3)
	for i := range nums {
		n, err := strconv.ParseUint(parts[i+1], 10, 64)
		if err != nil {
			n = 0
		}
		nums[i] = n
	}
	return semver.New(nums[0], nums[1], nums[2], "", "")
}

// Compare orders a before b when a is the newer version.
// It returns a negative number if a sorts first, positive if b sorts first, 0 on ties.
func Compare(a, b string) int {
	return Extract(b).Compare(Extract(a))
}

// SortDescending returns a copy of versions ordered newest first.
func SortDescending(versions []string) []string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// SortReleases returns a copy of releases ordered newest first.
// Releases with equal versions keep their relative order.
func SortReleases(releases []releasetypes.Release) []releasetypes.Release {
	sorted := make([]releasetypes.Release, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i].Version, sorted[j].Version) < 0
	})
	return sorted
}

// Versions returns the version strings of releases ordered newest first.
func Versions(releases []releasetypes.Release) []string {
	sorted := SortReleases(releases)
	versions := make([]string, len(sorted))
	for i, r := range sorted {
		versions[i] = r.Version
	}
	return versions
}
