package report

import (
	"fmt"
	"io"
)

const mib = 1024 * 1024

// MB formats n bytes as megabytes with one decimal, e.g. "1.5".
func MB(n int64) string {
	return fmt.Sprintf("%.1f", float64(n)/mib)
}

// Reporter prints one line per file and a closing total.
type Reporter struct {
	w     io.Writer
	verb  string
	count int
	total int64
}

// New returns a Reporter writing "<verb> <name> (<x> MB)" lines to w.
func New(w io.Writer, verb string) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, verb: verb}
}

// File records and prints one written file.
func (r *Reporter) File(name string, size int64) {
	r.count++
	r.total += size
	_, _ = fmt.Fprintf(r.w, "%s %s (%s MB)\n", r.verb, name, MB(size))
}

// Listed records and prints one object of a listing.
func (r *Reporter) Listed(name string, size int64) {
	r.count++
	r.total += size
	_, _ = fmt.Fprintf(r.w, "  %s (%s MB)\n", name, MB(size))
}

// Line prints a free-form line.
func (r *Reporter) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format+"\n", args...)
}

// Summary prints "Total: N files, X MB".
func (r *Reporter) Summary() {
	_, _ = fmt.Fprintf(r.w, "\nTotal: %d files, %s MB\n", r.count, MB(r.total))
}

func (r *Reporter) Count() int   { return r.count }
func (r *Reporter) Total() int64 { return r.total }
