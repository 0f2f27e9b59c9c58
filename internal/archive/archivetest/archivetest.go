// Package archivetest builds zip fixtures for tests.
package archivetest

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
)

// File is one fixture entry. A Name ending in "/" is written as a directory.
type File struct {
	Name string
	Body string
}

// Build returns the bytes of a zip archive holding files in order.
func Build(t testing.TB, files ...File) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", f.Name, err)
		}
		if f.Body == "" {
			continue
		}
		if _, err := w.Write([]byte(f.Body)); err != nil {
			t.Fatalf("zip write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
