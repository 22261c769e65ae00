package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to "1".
const UpdateGoldenEnv = "CCRELEASES_UPDATE_GOLDEN"

// Normalize strips ANSI sequences and trailing whitespace so terminal output compares stably.
func Normalize(output string) string {
	lines := strings.Split(ansi.Strip(output), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// AssertGolden compares actual with testdata/<name>.golden after normalizing both.
// A missing golden file, or UpdateGoldenEnv=1, writes actual as the new golden file.
func AssertGolden(t *testing.T, name, actual string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	actual = Normalize(actual)

	expectedBytes, err := os.ReadFile(path)
	if os.Getenv(UpdateGoldenEnv) == "1" || os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual+"\n"), 0644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		t.Logf("recorded golden file %s", path)
		return
	}
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	expected := Normalize(string(expectedBytes))
	if expected != actual {
		t.Errorf("output does not match %s:\n%s", path, Diff(expected, actual))
	}
}

// Diff renders a line-oriented diff of expected and actual.
func Diff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, diff := range diffs {
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				fmt.Fprintf(&out, "- %s", line)
			case diffmatchpatch.DiffInsert:
				fmt.Fprintf(&out, "+ %s", line)
			default:
				fmt.Fprintf(&out, "  %s", line)
			}
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}
