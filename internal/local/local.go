// Package local writes dataset archives and their entries to the local filesystem.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/dataset-ingest/internal/archive"
)

// SaveArchive writes data to <dir>/<name>.zip, creating dir if needed, and
// returns the path written.
func SaveArchive(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, strings.TrimSuffix(name, ".zip")+".zip")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("action", "save_archive").Str("path", path).Int("bytes", len(data)).Msg("archive saved")
	return path, nil
}

// ExtractAll writes every non-directory entry of r under dir, creating
// parents and overwriting existing files. onFile, if set, is called after
// each file is written. Extraction stops at the first error; files already
// written stay on disk.
func ExtractAll(r *archive.Reader, dir string, onFile func(archive.Entry)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, e := range r.Entries() {
		target, err := Target(dir, e.Name)
		if err != nil {
			return err
		}
		if e.Dir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}

		data, err := r.Read(e.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		if onFile != nil {
			onFile(archive.Entry{Name: e.Name, Size: int64(len(data))})
		}
	}
	return nil
}

// Target resolves an entry name under dir, rejecting names that would land
// outside it.
func Target(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes %s", name, dir)
	}
	return filepath.Join(dir, clean), nil
}
