package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrArchive marks corrupt or unreadable zip content.
var ErrArchive = errors.New("archive error")

// Entry is one record of the archive. Dir entries carry no data.
type Entry struct {
	Name string
	Size int64
	Dir  bool
}

// Reader gives by-name access to the entries of a zip archive.
type Reader struct {
	files  []*zip.File
	byName map[string]*zip.File
	closer io.Closer
}

// Open reads a zip archive held in memory.
func Open(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrArchive, err)
	}
	return newReader(zr.File, nil), nil
}

// OpenFile opens a zip archive on disk. Close releases the file handle.
func OpenFile(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArchive, path, err)
	}
	return newReader(rc.File, rc), nil
}

func newReader(files []*zip.File, closer io.Closer) *Reader {
	r := &Reader{
		files:  files,
		byName: make(map[string]*zip.File, len(files)),
		closer: closer,
	}
	for _, f := range files {
		if _, dup := r.byName[f.Name]; !dup {
			r.byName[f.Name] = f
		}
	}
	return r
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Entries lists every record in archive order, directories included.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, entryOf(f))
	}
	return out
}

// Files lists the non-directory entries in archive order.
func (r *Reader) Files() []Entry {
	out := make([]Entry, 0, len(r.files))
	for _, f := range r.files {
		if e := entryOf(f); !e.Dir {
			out = append(out, e)
		}
	}
	return out
}

// Read returns the uncompressed bytes of the named entry.
func (r *Reader) Read(name string) ([]byte, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: no entry %q", ErrArchive, name)
	}
	if IsDir(f.Name) {
		return nil, fmt.Errorf("%w: %q is a directory", ErrArchive, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrArchive, name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrArchive, name, err)
	}
	return data, nil
}

// IsDir reports whether a zip entry name denotes a directory.
func IsDir(name string) bool {
	return strings.HasSuffix(name, "/")
}

func entryOf(f *zip.File) Entry {
	return Entry{
		Name: f.Name,
		Size: int64(f.UncompressedSize64),
		Dir:  IsDir(f.Name),
	}
}
