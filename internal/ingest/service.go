package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/dataset-ingest/internal/archive"
	"github.com/Chapsvision-dev/dataset-ingest/internal/config"
	"github.com/Chapsvision-dev/dataset-ingest/internal/fetch"
	"github.com/Chapsvision-dev/dataset-ingest/internal/local"
	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
	"github.com/Chapsvision-dev/dataset-ingest/internal/report"
)

// Options controls where progress goes and how the dataset is fetched.
type Options struct {
	// Out receives the human-readable progress report (default: io.Discard).
	Out io.Writer
	// HTTPClient is used for the download (default: http.DefaultClient).
	HTTPClient *http.Client
}

// File is one entry written to a sink.
type File struct {
	Name string
	Size int64
}

// Result summarises a run.
type Result struct {
	Files      []File
	Count      int
	TotalBytes int64
	// Archive is the saved archive path (local variant only).
	Archive string
}

func (r *Result) add(name string, size int64) {
	r.Files = append(r.Files, File{Name: name, Size: size})
	r.Count++
	r.TotalBytes += size
}

// Upload downloads the dataset archive and writes every file entry to p under
// cfg.BlobPrefix. The archive is staged in a temporary file that is removed on
// every return path. A failure stops the run; objects already written remain.
func Upload(ctx context.Context, cfg config.Config, p provider.Provider, opt Options) (Result, error) {
	var res Result
	if cfg.SourceURL == "" {
		return res, &config.MissingError{Key: "DATA_SOURCE_URL"}
	}
	out := writerOr(opt.Out)

	fmt.Fprintf(out, "Downloading dataset from %s\n", cfg.SourceURL)
	data, err := fetch.Fetch(ctx, opt.HTTPClient, cfg.SourceURL)
	if err != nil {
		return res, fmt.Errorf("download: %w", err)
	}
	fmt.Fprintf(out, "Downloaded successfully. Now uploading to %s...\n", p.Name())

	if err := p.EnsureContainer(ctx); err != nil {
		return res, fmt.Errorf("ensure container %q: %w", p.Container(), err)
	}

	tmp, err := writeTemp(cfg.TempDir, cfg.ArchiveName, data)
	if err != nil {
		return res, err
	}
	defer func() {
		if rerr := os.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
			log.Warn().Err(rerr).Str("file", tmp).Msg("failed to remove temporary archive")
		}
	}()

	r, err := archive.OpenFile(tmp)
	if err != nil {
		return res, err
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()
	fmt.Fprintf(out, "Found %d files in the dataset\n", len(entries))

	rep := report.New(out, "Uploaded")
	start := time.Now()
	for _, e := range entries {
		if e.Dir {
			continue
		}
		fmt.Fprintf(out, "Uploading %s...\n", e.Name)

		body, err := r.Read(e.Name)
		if err != nil {
			return res, err
		}
		key := BlobKey(cfg.BlobPrefix, e.Name)
		if err := p.Put(ctx, key, body); err != nil {
			return res, fmt.Errorf("put %s: %w", key, err)
		}
		rep.File(e.Name, int64(len(body)))
		res.add(e.Name, int64(len(body)))
	}

	fmt.Fprintf(out, "\nAll done! Dataset is now in %s\n", p.Name())
	fmt.Fprintf(out, "Container: %s\n", p.Container())
	fmt.Fprintf(out, "Path: %s/\n", cfg.BlobPrefix)
	rep.Summary()

	log.Info().
		Str("action", "upload_dataset").
		Str("provider", p.Name()).
		Str("container", p.Container()).
		Int("files", res.Count).
		Int64("bytes", res.TotalBytes).
		Dur("elapsed_ms", time.Since(start)).
		Msg("dataset upload OK")
	return res, nil
}

// Extract downloads the dataset archive, keeps it as <LocalDir>/<ArchiveName>.zip
// and extracts it in place. Re-running overwrites the same files.
func Extract(ctx context.Context, cfg config.Config, opt Options) (Result, error) {
	var res Result
	if cfg.SourceURL == "" {
		return res, &config.MissingError{Key: "DATA_SOURCE_URL"}
	}
	out := writerOr(opt.Out)

	fmt.Fprintf(out, "Downloading dataset from %s\n", cfg.SourceURL)
	data, err := fetch.Fetch(ctx, opt.HTTPClient, cfg.SourceURL)
	if err != nil {
		return res, fmt.Errorf("download: %w", err)
	}

	saved, err := local.SaveArchive(cfg.LocalDir, cfg.ArchiveName, data)
	if err != nil {
		return res, err
	}
	res.Archive = saved
	fmt.Fprintf(out, "Saved archive to %s\n", saved)

	r, err := archive.OpenFile(saved)
	if err != nil {
		return res, err
	}
	defer func() { _ = r.Close() }()

	rep := report.New(out, "Extracted")
	start := time.Now()
	err = local.ExtractAll(r, cfg.LocalDir, func(e archive.Entry) {
		rep.File(e.Name, e.Size)
		res.add(e.Name, e.Size)
	})
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	fmt.Fprintf(out, "\nAll done! Dataset extracted to %s\n", cfg.LocalDir)
	rep.Summary()

	log.Info().
		Str("action", "extract_dataset").
		Str("dir", cfg.LocalDir).
		Int("files", res.Count).
		Int64("bytes", res.TotalBytes).
		Dur("elapsed_ms", time.Since(start)).
		Msg("dataset extract OK")
	return res, nil
}

// BlobKey builds "<prefix>/<entry>"; an empty prefix yields the entry name.
func BlobKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func writeTemp(dir, name string, data []byte) (string, error) {
	if name == "" {
		name = config.DefaultArchiveName
	}
	f, err := os.CreateTemp(dir, name+"-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write temp archive: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temp archive: %w", err)
	}
	log.Debug().Str("action", "stage_archive").Str("file", tmp).Int("bytes", len(data)).Msg("archive staged")
	return tmp, nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
