package manifest

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a lock file or manifest does not exist.
var ErrNotFound = errors.New("file not found")

// ParseLock decodes lock file contents, JSON or YAML.
func ParseLock(data []byte) (*LockFile, error) {
	var lock LockFile
	if err := decode(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &lock, nil
}

// ParseManifest decodes root manifest contents, JSON or YAML.
func ParseManifest(data []byte) (*Package, error) {
	var pkg Package
	if err := decode(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &pkg, nil
}

// ReadLock reads and parses the lock file at path.
func ReadLock(fsys afero.Fs, path string) (*LockFile, error) {
	data, err := readFile(fsys, path)
	if err != nil {
		return nil, err
	}
	lock, err := ParseLock(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lock, nil
}

// ReadManifest reads and parses the root manifest at path.
func ReadManifest(fsys afero.Fs, path string) (*Package, error) {
	data, err := readFile(fsys, path)
	if err != nil {
		return nil, err
	}
	pkg, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

// readFile reads the contents of a file, mapping a missing file to ErrNotFound.
func readFile(fsys afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
