package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/cppbind/internal/binder"
	"github.com/dshills/cppbind/internal/descriptor"
	"github.com/dshills/cppbind/internal/extractor"
	"github.com/dshills/cppbind/internal/graph"
	"github.com/dshills/cppbind/internal/storage"
	"github.com/dshills/cppbind/pkg/types"
)

// Builder coordinates the build pipeline: extract -> bind -> compile -> cache
type Builder struct {
	storage  storage.Storage
	compiler Compiler
	binder   *binder.Binder

	namespace string
	cacheDir  string
	workers   int
	force     bool
	failFast  bool
}

// Config contains configuration for a build run
type Config struct {
	Workers      int      // concurrent compiles (default: runtime.NumCPU())
	CacheDir     string   // artifact directory (default: DefaultCacheDir())
	Namespace    string   // designated export namespace (default: extractor.DefaultNamespace)
	ForceRebuild bool     // bypass the cached-fresh shortcut
	FailFast     bool     // stop dispatching new compiles after the first failure
	Compiler     Compiler // external toolchain (default: NewCXXCompiler())
}

// DefaultCacheDir resolves the process-wide artifact directory:
// CPPBIND_CACHE_DIR if set, otherwise ~/.cppbind/cache.
func DefaultCacheDir() string {
	if dir := os.Getenv("CPPBIND_CACHE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cppbind-cache")
	}
	return filepath.Join(home, ".cppbind", "cache")
}

// New creates a Builder backed by the given cache storage.
func New(store storage.Storage, config *Config) (*Builder, error) {
	if config == nil {
		config = &Config{}
	}

	b := &Builder{
		storage:   store,
		compiler:  config.Compiler,
		binder:    binder.New(),
		namespace: config.Namespace,
		cacheDir:  config.CacheDir,
		workers:   config.Workers,
		force:     config.ForceRebuild,
		failFast:  config.FailFast,
	}
	if b.compiler == nil {
		b.compiler = NewCXXCompiler()
	}
	if b.namespace == "" {
		b.namespace = extractor.DefaultNamespace
	}
	if b.cacheDir == "" {
		b.cacheDir = DefaultCacheDir()
	}
	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}

	if err := os.MkdirAll(b.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", b.cacheDir, err)
	}
	return b, nil
}

// Assemble turns parsed descriptors into build modules. Source paths are
// resolved relative to each descriptor's directory. A descriptor without
// a link directive, or a module name claimed by two descriptors, is a
// configuration error.
func Assemble(descs []*types.Descriptor) ([]*types.Module, error) {
	modules := make([]*types.Module, 0, len(descs))
	owners := make(map[string]string)

	for _, desc := range descs {
		link := desc.Link()
		if link == nil {
			return nil, fmt.Errorf("descriptor %s: missing link directive", desc.Path)
		}
		if prev, taken := owners[link.ModuleName]; taken {
			return nil, fmt.Errorf("module %s declared by both %s and %s", link.ModuleName, prev, desc.Path)
		}
		owners[link.ModuleName] = desc.Path

		base := filepath.Dir(desc.Path)
		sources := make([]string, len(link.Files))
		for i, f := range link.Files {
			if filepath.IsAbs(f) {
				sources[i] = f
			} else {
				sources[i] = filepath.Join(base, f)
			}
		}

		modules = append(modules, &types.Module{
			Name:       link.ModuleName,
			Sources:    sources,
			Descriptor: desc,
			DependsOn:  desc.Dependencies(),
			State:      types.StateUnbuilt,
		})
	}
	return modules, nil
}

// AssembleFiles parses descriptor files and assembles build modules.
func AssembleFiles(paths []string) ([]*types.Module, error) {
	parser := descriptor.New()
	descs := make([]*types.Descriptor, 0, len(paths))
	for _, path := range paths {
		d, err := parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return Assemble(descs)
}

// Build runs the full orchestration over the given modules: dependency
// ordering, cache decisions, parallel compilation, and cache updates.
// A dependency cycle is fatal for the whole run. Per-module failures are
// recorded in the report; Build itself returns an error only for
// configuration problems that prevent the run from starting.
//
// A failed module fails its transitive dependents without being
// dispatched; unrelated modules keep building. With FailFast set, no
// new compile is dispatched after the first failure, while in-flight
// compiles run to completion. The caller's ctx cancels everything.
func (b *Builder) Build(ctx context.Context, modules []*types.Module) (*types.BuildReport, error) {
	start := time.Now()

	dag, byName, err := b.prepare(ctx, modules)
	if err != nil {
		return nil, err
	}

	levels, err := dag.Levels()
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]*types.ModuleStatus, len(modules))
	var mu sync.Mutex
	stopped := false

	sem := make(chan struct{}, b.workers)

	for _, level := range levels {
		// One plain group per level: a module's failure lands in its own
		// status entry and must not cancel siblings mid-compile.
		var eg errgroup.Group

		for _, name := range level {
			m := byName[name]

			mu.Lock()
			st := &types.ModuleStatus{Name: m.Name, State: m.State}
			statuses[m.Name] = st

			if m.State == types.StateCachedFresh {
				if rec, err := b.storage.GetModule(ctx, m.Name); err == nil {
					st.Artifact = rec.ArtifactPath
				}
				mu.Unlock()
				continue
			}
			if dep, failed := failedDependency(m, statuses); failed {
				m.State = types.StateFailed
				st.State = types.StateFailed
				st.Err = fmt.Errorf("module %s: dependency %s failed", m.Name, dep)
				mu.Unlock()
				continue
			}
			if stopped {
				markSkipped(m, st, "skipped: build stopped after earlier failure")
				mu.Unlock()
				continue
			}
			mu.Unlock()

			mod, stat := m, st
			eg.Go(func() error {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					mu.Lock()
					markSkipped(mod, stat, "skipped: build interrupted")
					mu.Unlock()
					return nil
				}

				mu.Lock()
				if stopped {
					markSkipped(mod, stat, "skipped: build stopped after earlier failure")
					mu.Unlock()
					return nil
				}
				mu.Unlock()

				if err := b.buildOne(ctx, mod, stat); err != nil {
					mu.Lock()
					mod.State = types.StateFailed
					stat.State = types.StateFailed
					stat.Err = err
					if b.failFast {
						stopped = true
					}
					mu.Unlock()
				}
				return nil
			})
		}

		_ = eg.Wait()
	}

	report := &types.BuildReport{Duration: time.Since(start)}
	for _, name := range dag.Modules() {
		st := statuses[name]
		report.Modules = append(report.Modules, *st)
		switch st.State {
		case types.StateBuilt:
			report.Rebuilt++
		case types.StateCachedFresh:
			report.Fresh++
		case types.StateFailed:
			report.Failed++
		case types.StateSkipped:
			report.Skipped++
		}
	}
	return report, nil
}

// markSkipped records a module that was never dispatched so the report
// totals still account for it. Callers hold the status mutex.
func markSkipped(m *types.Module, st *types.ModuleStatus, reason string) {
	m.State = types.StateSkipped
	st.State = types.StateSkipped
	st.Diagnostics = append(st.Diagnostics, reason)
}

// Status computes what Build would do without building: per-module fresh
// hash comparison against the cache, plus cycle detection.
func (b *Builder) Status(ctx context.Context, modules []*types.Module) (*types.BuildReport, error) {
	start := time.Now()

	dag, byName, err := b.prepare(ctx, modules)
	if err != nil {
		return nil, err
	}

	report := &types.BuildReport{Duration: time.Since(start)}
	for _, name := range dag.Modules() {
		m := byName[name]
		st := types.ModuleStatus{Name: m.Name, State: m.State}
		if m.State == types.StateCachedFresh {
			report.Fresh++
			if rec, err := b.storage.GetModule(ctx, m.Name); err == nil {
				st.Artifact = rec.ArtifactPath
			}
		}
		report.Modules = append(report.Modules, st)
	}
	return report, nil
}

// Clean deletes every cached artifact and cache row.
func (b *Builder) Clean(ctx context.Context) error {
	recs, err := b.storage.ListModules(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ArtifactPath != "" {
			if err := os.Remove(rec.ArtifactPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove artifact %s: %w", rec.ArtifactPath, err)
			}
		}
		if err := b.storage.DeleteModule(ctx, rec.Name); err != nil {
			return err
		}
	}
	return nil
}

// prepare validates the dependency graph and computes every module's
// fresh hash and initial state.
func (b *Builder) prepare(ctx context.Context, modules []*types.Module) (*graph.Graph, map[string]*types.Module, error) {
	dag := graph.New()
	byName := make(map[string]*types.Module, len(modules))
	for _, m := range modules {
		if err := dag.AddModule(m.Name); err != nil {
			return nil, nil, err
		}
		byName[m.Name] = m
	}
	for _, m := range modules {
		for _, dep := range m.DependsOn {
			if err := dag.AddDependency(m.Name, dep); err != nil {
				return nil, nil, err
			}
		}
	}
	if cyc := dag.DetectCycle(); cyc != nil {
		return nil, nil, cyc
	}

	for _, m := range modules {
		hash, err := HashModule(m)
		if err != nil {
			return nil, nil, err
		}
		m.Hash = hash
		m.State = b.initialState(ctx, m)
	}
	return dag, byName, nil
}

// initialState decides between the cached-fresh shortcut and a rebuild.
// Fresh requires a stored successful build, a matching content hash, and
// an artifact that still exists on disk.
func (b *Builder) initialState(ctx context.Context, m *types.Module) types.BuildState {
	rec, err := b.storage.GetModule(ctx, m.Name)
	if err != nil {
		return types.StateUnbuilt
	}
	if b.force {
		return types.StateStale
	}
	if rec.Status != string(types.StateBuilt) {
		return types.StateStale
	}
	if rec.ContentHash != m.Hash {
		return types.StateStale
	}
	if rec.ArtifactPath == "" {
		return types.StateStale
	}
	if _, err := os.Stat(rec.ArtifactPath); err != nil {
		return types.StateStale
	}
	return types.StateCachedFresh
}

// buildOne runs the full pipeline for one module. The cache row is
// touched only on success, so a failed rebuild leaves the previous
// artifact and record intact.
func (b *Builder) buildOne(ctx context.Context, m *types.Module, st *types.ModuleStatus) error {
	began := time.Now()
	m.State = types.StateBuilding
	var diags []string

	ext := extractor.New(b.namespace)
	table := types.NewSymbolTable()
	for _, src := range m.Sources {
		res, err := ext.ExtractFile(src)
		if err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
		for _, se := range res.ScanErrors {
			diags = append(diags, se.Error())
		}
		for _, w := range res.Warnings {
			diags = append(diags, w.String())
		}
		table.Merge(res.Table)
	}
	diags = append(diags, m.Descriptor.Warnings...)

	plan, err := b.binder.Bind(m.Name, table, m.Descriptor)
	if err != nil {
		st.Diagnostics = diags
		return err
	}

	scratch, err := os.MkdirTemp("", "cppbind-"+m.Name+"-")
	if err != nil {
		return fmt.Errorf("module %s: %w", m.Name, err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	gluePath := filepath.Join(scratch, m.Name+"_glue.cpp")
	if err := os.WriteFile(gluePath, []byte(plan.Glue), 0o644); err != nil {
		return fmt.Errorf("module %s: failed to write glue: %w", m.Name, err)
	}

	// Atomic replace: compile into a temp path in the cache dir, then
	// rename over the previous artifact.
	final := filepath.Join(b.cacheDir, m.Name+".so")
	tmpOut := filepath.Join(b.cacheDir, fmt.Sprintf(".%s.%d.tmp", m.Name, os.Getpid()))

	out, err := b.compiler.Compile(ctx, CompileRequest{
		Module:      m.Name,
		GluePath:    gluePath,
		Sources:     m.Sources,
		IncludeDirs: includeDirsFor(m.Sources),
		Output:      tmpOut,
	})
	if err != nil {
		_ = os.Remove(tmpOut)
		if out != "" {
			diags = append(diags, out)
		}
		st.Diagnostics = diags
		return err
	}
	if err := os.Rename(tmpOut, final); err != nil {
		_ = os.Remove(tmpOut)
		return fmt.Errorf("module %s: failed to install artifact: %w", m.Name, err)
	}

	now := time.Now()
	rec := &storage.ModuleRecord{
		Name:           m.Name,
		SourceFiles:    m.Sources,
		DescriptorPath: m.Descriptor.Path,
		ContentHash:    m.Hash,
		ArtifactPath:   final,
		Status:         string(types.StateBuilt),
		BuiltAt:        now,
	}
	if err := b.storage.UpsertModule(ctx, rec); err != nil {
		return fmt.Errorf("module %s: failed to record build: %w", m.Name, err)
	}

	m.State = types.StateBuilt
	st.State = types.StateBuilt
	st.Artifact = final
	st.Duration = time.Since(began)
	st.Diagnostics = diags
	return nil
}

// failedDependency reports whether any direct dependency of m failed in
// an earlier level.
func failedDependency(m *types.Module, statuses map[string]*types.ModuleStatus) (string, bool) {
	for _, dep := range m.DependsOn {
		if st, ok := statuses[dep]; ok && st.State == types.StateFailed {
			return dep, true
		}
	}
	return "", false
}
