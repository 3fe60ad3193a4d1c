package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/interop-labs/modreg/internal/registry"
)

// DefaultPerm is the file mode of a newly written artifact.
const DefaultPerm os.FileMode = 0o644

// Writer replaces the artifact at a fixed path.
type Writer struct {
	fs      afero.Fs
	path    string
	encoder Encoder
}

// NewWriter returns a Writer that encodes records with enc and writes them
// to path through fsys.
func NewWriter(fsys afero.Fs, path string, enc Encoder) *Writer {
	return &Writer{fs: fsys, path: path, encoder: enc}
}

// Path returns the artifact location.
func (w *Writer) Path() string { return w.path }

// Replace overwrites the artifact with records. When records is empty nothing
// is written and any existing artifact is left untouched; written reports
// whether the file was replaced. The artifact is encoded in memory first so an
// encoding error never truncates the previous file.
func (w *Writer) Replace(records []registry.Record) (written bool, err error) {
	if len(records) == 0 {
		return false, nil
	}

	var buf bytes.Buffer
	if err := w.encoder.Encode(&buf, records); err != nil {
		return false, fmt.Errorf("encoding %s: %w", w.path, err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(w.fs, w.path, buf.Bytes(), DefaultPerm); err != nil {
		return false, fmt.Errorf("writing %s: %w", w.path, err)
	}
	return true, nil
}
