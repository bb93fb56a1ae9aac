// Package testutil provides shared test infrastructure for the parking-lot
// simulator. It locates fixture files under the repo-level testdata/
// directory and holds assertion helpers used across sim/ test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturePath returns the absolute path of testdata/<name>, failing the test
// if the file does not exist. The path is resolved relative to this source
// file: sim/internal/testutil/ → testdata/.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Failed to locate fixture %s: %v", name, err)
	}
	return path
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
