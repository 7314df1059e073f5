package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"cama/internal/services"
)

// Entry is the wire form of one synced item in the sink.
type Entry struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Sink is the external durable destination flushed items are appended to. A
// real deployment would back this with a remote service; the demo ships a
// local file implementation.
type Sink interface {
	Append(ctx context.Context, entries []Entry) error
}

// FileSink appends entries to a JSON array on disk. Each append is a
// read-modify-atomic-replace: the combined content is written to a temporary
// file, synced, and renamed over the old one, so the sink is never left
// truncated or corrupted. An absent file is equivalent to an empty array.
type FileSink struct {
	path string
}

// NewFileSink creates a sink backed by the given file path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the sink file location.
func (s *FileSink) Path() string {
	return s.path
}

// Load reads the current sink contents.
func (s *FileSink) Load(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrSinkWrite, "sink", "load", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, services.Wrap(services.ErrSinkWrite, "sink", "load", "parse existing content", err)
	}
	return entries, nil
}

// Append implements Sink with atomic replace semantics.
func (s *FileSink) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	existing, err := s.Load(ctx)
	if err != nil {
		return err
	}
	combined := append(existing, entries...)

	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "marshal", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "ensure directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "create temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// Left behind only on failure paths.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "close temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "replace sink file", err)
	}
	syncDir(dir)
	return nil
}

// syncDir makes the rename itself durable. Best effort: not every platform
// or filesystem supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
