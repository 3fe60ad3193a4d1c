// Package catalog supplies the installed package list for a project. It reads
// the dependency lock file and the root manifest, keeps the locked packages
// that carry the framework namespace, and appends the root project.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/interop-labs/modreg/internal/logging"
	"github.com/interop-labs/modreg/internal/manifest"
	"github.com/interop-labs/modreg/internal/registry"
)

// ErrNoManifest is returned when the project has no root manifest.
var ErrNoManifest = errors.New("root manifest not found")

// Options locates the project files and selects eligible packages.
type Options struct {
	ProjectDir   string
	LockFile     string // relative to ProjectDir unless absolute
	ManifestFile string // relative to ProjectDir unless absolute
	Namespace    string // extra key that marks framework packages
	IncludeDev   bool
}

// Catalog reads package descriptors from a project directory.
type Catalog struct {
	fs   afero.Fs
	opts Options
}

// New returns a catalog reading through fsys.
func New(fsys afero.Fs, opts Options) *Catalog {
	return &Catalog{fs: fsys, opts: opts}
}

// LockPath returns the resolved lock file path.
func (c *Catalog) LockPath() string { return c.resolve(c.opts.LockFile) }

// ManifestPath returns the resolved root manifest path.
func (c *Catalog) ManifestPath() string { return c.resolve(c.opts.ManifestFile) }

func (c *Catalog) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.opts.ProjectDir, name)
}

// Packages returns the candidate packages: locked packages (and dev packages
// when enabled) whose extra metadata holds the namespace as a map, followed by
// the root project. A missing lock file yields the root project alone.
func (c *Catalog) Packages(ctx context.Context) ([]registry.Package, error) {
	log := logging.FromContext(ctx)

	root, err := manifest.ReadManifest(c.fs, c.ManifestPath())
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", c.ManifestPath(), ErrNoManifest)
	}
	if err != nil {
		return nil, err
	}

	var packages []registry.Package

	lock, err := manifest.ReadLock(c.fs, c.LockPath())
	switch {
	case errors.Is(err, manifest.ErrNotFound):
		log.Warn("no lock file, only the root package is scanned", "path", c.LockPath())
	case err != nil:
		return nil, err
	default:
		packages = append(packages, c.eligible(lock.Packages, false)...)
		if c.opts.IncludeDev {
			packages = append(packages, c.eligible(lock.PackagesDev, true)...)
		}
	}

	rootPkg := convert(*root, false)
	rootPkg.IsRoot = true
	packages = append(packages, rootPkg)

	log.Debug("catalog loaded", "lock", c.LockPath(), "candidates", len(packages))
	return packages, nil
}

// eligible keeps the packages whose extra metadata holds the namespace as a map.
func (c *Catalog) eligible(locked []manifest.Package, dev bool) []registry.Package {
	var out []registry.Package
	for _, p := range locked {
		if _, ok := p.Extra[c.opts.Namespace].(map[string]any); !ok {
			continue
		}
		out = append(out, convert(p, dev))
	}
	return out
}

func convert(p manifest.Package, dev bool) registry.Package {
	requires := make([]registry.Requirement, len(p.Require))
	for i, r := range p.Require {
		requires[i] = registry.Requirement{Name: r.Name, Constraint: r.Constraint}
	}
	return registry.Package{
		Name:     p.Name,
		Version:  p.Version,
		Requires: requires,
		Extra:    p.Extra,
		Dev:      dev,
	}
}

// Freshness describes the artifact relative to the files it is built from.
type Freshness int

const (
	// FreshnessCurrent means the artifact is newer than the lock file and manifest.
	FreshnessCurrent Freshness = iota
	// FreshnessStale means the lock file or manifest changed after the artifact was written.
	FreshnessStale
	// FreshnessMissing means no artifact exists.
	FreshnessMissing
)

// String returns a human-readable name for the freshness state.
func (f Freshness) String() string {
	switch f {
	case FreshnessCurrent:
		return "current"
	case FreshnessStale:
		return "stale"
	case FreshnessMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Freshness compares the artifact's modification time with the lock file and
// root manifest. Inputs that do not exist are ignored.
func (c *Catalog) Freshness(artifactPath string) (Freshness, error) {
	info, err := c.fs.Stat(c.resolve(artifactPath))
	if errors.Is(err, afero.ErrFileNotFound) {
		return FreshnessMissing, nil
	}
	if err != nil {
		return FreshnessMissing, fmt.Errorf("stat %s: %w", artifactPath, err)
	}

	newest, err := c.newestInput()
	if err != nil {
		return FreshnessMissing, err
	}
	if newest.After(info.ModTime()) {
		return FreshnessStale, nil
	}
	return FreshnessCurrent, nil
}

func (c *Catalog) newestInput() (time.Time, error) {
	var newest time.Time
	for _, path := range []string{c.LockPath(), c.ManifestPath()} {
		info, err := c.fs.Stat(path)
		if errors.Is(err, afero.ErrFileNotFound) {
			continue
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}
