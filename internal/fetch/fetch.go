package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// StatusError is returned when the server answers anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download %s: %d", e.URL, e.StatusCode)
}

// Fetch issues a single GET and buffers the whole body in memory.
// A nil client means http.DefaultClient. There are no retries.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	log.Info().Str("action", "download").Str("url", url).Msg("starting download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	log.Info().
		Str("action", "download").
		Str("url", url).
		Int("bytes", len(data)).
		Str("size", humanize.IBytes(uint64(len(data)))).
		Dur("elapsed_ms", time.Since(start)).
		Msg("download OK")
	return data, nil
}
