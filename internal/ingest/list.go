package ingest

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
	"github.com/Chapsvision-dev/dataset-ingest/internal/report"
)

// Listing is what the store holds after a run.
type Listing struct {
	Container  string
	Objects    []provider.Object
	Count      int
	TotalBytes int64
}

// List re-enumerates the whole container (not only the upload prefix) and
// prints each object followed by a total. It never writes to the store.
func List(ctx context.Context, p provider.Provider, out io.Writer) (Listing, error) {
	res := Listing{Container: p.Container()}

	objs, err := p.List(ctx)
	if err != nil {
		return res, err
	}

	rep := report.New(writerOr(out), "")
	rep.Line("\nFiles in %s:", p.Container())
	for _, o := range objs {
		rep.Listed(o.Key, o.Size)
	}
	rep.Summary()

	res.Objects = objs
	res.Count = rep.Count()
	res.TotalBytes = rep.Total()

	log.Debug().
		Str("action", "list").
		Str("provider", p.Name()).
		Str("container", res.Container).
		Int("objects", res.Count).
		Int64("bytes", res.TotalBytes).
		Msg("listing OK")
	return res, nil
}
