package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/interop-labs/modreg/internal/artifact"
	"github.com/interop-labs/modreg/internal/catalog"
	"github.com/interop-labs/modreg/internal/compat"
	"github.com/interop-labs/modreg/internal/config"
	"github.com/interop-labs/modreg/internal/logging"
	"github.com/interop-labs/modreg/internal/manifest"
	"github.com/interop-labs/modreg/internal/registry"
)

// Generator regenerates the module registry of one project.
type Generator struct {
	fs      afero.Fs
	cfg     *config.Config
	version string
	catalog *catalog.Catalog
}

// Result summarizes one run.
type Result struct {
	Plan    *registry.Plan
	Path    string
	Written bool
	Compat  compat.Result
}

// New returns a Generator for cfg. version is the running build version,
// compared against the root project's installer constraint.
func New(fsys afero.Fs, cfg *config.Config, version string) *Generator {
	return &Generator{
		fs:      fsys,
		cfg:     cfg,
		version: version,
		catalog: catalog.New(fsys, catalog.Options{
			ProjectDir:   cfg.ProjectDir,
			LockFile:     cfg.LockFile,
			ManifestFile: cfg.ManifestFile,
			Namespace:    cfg.Namespace,
			IncludeDev:   cfg.IncludeDev,
		}),
	}
}

// Catalog returns the catalog the generator reads from.
func (g *Generator) Catalog() *catalog.Catalog { return g.catalog }

// Plan reads the project and computes the ordered packages and sorted
// factory records without writing anything.
func (g *Generator) Plan(ctx context.Context) (*registry.Plan, error) {
	plan, _, err := g.plan(ctx)
	return plan, err
}

func (g *Generator) plan(ctx context.Context) (*registry.Plan, compat.Result, error) {
	log := logging.FromContext(ctx)

	g.warnInvalid(ctx)

	packages, err := g.catalog.Packages(ctx)
	if err != nil {
		return nil, compat.Result{}, err
	}

	var compatRes compat.Result
	for _, p := range packages {
		if !p.IsRoot {
			continue
		}
		compatRes, err = compat.Check(p.Requires, g.cfg.InstallerPackage, g.version)
		if err != nil {
			log.Warn("installer constraint not understood", "error", err)
			break
		}
		switch compatRes.Status {
		case compat.StatusUnsatisfied:
			log.Warn("running version does not satisfy the root project's installer constraint",
				"package", compatRes.Package, "constraint", compatRes.Constraint, "version", compatRes.Version)
		case compat.StatusUnchecked:
			log.Debug("installer compatibility not checked", "reason", compatRes.Reason)
		}
	}

	plan := registry.Build(ctx, packages, registry.Options{
		Namespace:  g.cfg.Namespace,
		FactoryKey: g.cfg.FactoryKey,
	})
	return plan, compatRes, nil
}

// Run computes the plan and replaces the artifact. When dryRun is non-nil the
// artifact is encoded to it instead and the file on disk is left alone.
func (g *Generator) Run(ctx context.Context, dryRun io.Writer) (*Result, error) {
	log := logging.FromContext(ctx)

	enc, err := artifact.NewEncoder(g.cfg.Format)
	if err != nil {
		return nil, err
	}

	plan, compatRes, err := g.plan(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Plan: plan, Path: g.cfg.OutputPath(), Compat: compatRes}

	if dryRun != nil {
		if len(plan.Records) == 0 {
			return res, nil
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, plan.Records); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", res.Path, err)
		}
		if _, err := dryRun.Write(buf.Bytes()); err != nil {
			return nil, err
		}
		return res, nil
	}

	res.Written, err = artifact.NewWriter(g.fs, res.Path, enc).Replace(plan.Records)
	if err != nil {
		return nil, err
	}
	if res.Written {
		log.Info("module registry written", "path", res.Path, "factories", len(plan.Records))
	} else {
		log.Info("no module factories declared, artifact left untouched", "path", res.Path)
	}
	return res, nil
}

// Validate checks the lock file and root manifest against their schemas.
// Files that do not exist are skipped.
func (g *Generator) Validate() (map[string]*manifest.ValidationResult, error) {
	results := make(map[string]*manifest.ValidationResult)
	for _, f := range g.inputs() {
		res, err := manifest.ValidateFile(g.fs, f.kind, f.path)
		if errors.Is(err, manifest.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", f.path, err)
		}
		results[f.path] = res
	}
	return results, nil
}

type input struct {
	kind manifest.Kind
	path string
}

func (g *Generator) inputs() []input {
	return []input{
		{manifest.KindLock, g.catalog.LockPath()},
		{manifest.KindManifest, g.catalog.ManifestPath()},
	}
}

// warnInvalid logs schema issues. Generation proceeds regardless; the
// catalog reports files it cannot read at all.
func (g *Generator) warnInvalid(ctx context.Context) {
	log := logging.FromContext(ctx)
	results, err := g.Validate()
	if err != nil {
		log.Debug("schema validation skipped", "error", err)
		return
	}
	for path, res := range results {
		for _, issue := range res.Issues {
			log.Warn("schema issue", "file", path, "path", issue.Path, "message", issue.Message)
		}
	}
}
