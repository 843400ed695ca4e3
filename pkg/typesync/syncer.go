package typesync

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/manifest"
	"github.com/jeffijoe/typesync/pkg/observability"
)

// DefaultConcurrency bounds concurrent registry lookups.
const DefaultConcurrency = 8

// rangePrefix is written in front of every added typings version.
const rangePrefix = "~"

// Config wires the collaborators of a [Syncer].
type Config struct {
	Source     Source            // required
	Manifests  ManifestStore     // nil: manifest.FileService
	Workspaces WorkspaceResolver // nil: workspaces are not expanded
	Options    OptionsLoader     // nil: zero Options
	Logger     *log.Logger       // nil: log.Default()

	// Concurrency bounds in-flight registry lookups (0 = DefaultConcurrency).
	Concurrency int
}

// Syncer adds missing @types packages to package.json files.
//
// A Syncer holds no per-run state; every Sync call gets its own metadata
// cache, so it can be reused and called from multiple goroutines.
type Syncer struct {
	source      Source
	manifests   ManifestStore
	workspaces  WorkspaceResolver
	options     OptionsLoader
	logger      *log.Logger
	concurrency int
}

// New creates a Syncer from cfg.
func New(cfg Config) (*Syncer, error) {
	if cfg.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a package metadata source is required")
	}
	s := &Syncer{
		source:      cfg.Source,
		manifests:   cfg.Manifests,
		workspaces:  cfg.Workspaces,
		options:     cfg.Options,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
	if s.manifests == nil {
		s.manifests = manifest.FileService{}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	return s, nil
}

// =============================================================================
// Multi-file coordination
// =============================================================================

// Sync syncs the manifest at path and every workspace member it declares.
// Files are only written when dryRun is false and typings were added.
// Any failure aborts the whole call.
func (s *Syncer) Sync(ctx context.Context, path string, dryRun bool) (*Result, error) {
	opts, err := s.loadOptions(path)
	if err != nil {
		return nil, err
	}

	root, err := s.manifests.Read(path)
	if err != nil {
		return nil, err
	}

	var members []string
	if s.workspaces != nil {
		members, err = s.workspaces.Workspaces(root, filepath.Dir(path), opts.IgnoreProjects)
		if err != nil {
			return nil, fmt.Errorf("resolve workspaces: %w", err)
		}
	}
	s.logger.Debug("resolved manifests", "root", path, "workspaces", len(members))

	g, ctx := errgroup.WithContext(ctx)
	src := newMemoSource(ctx, s.source, s.concurrency, s.logger)
	files := make([]SyncedFile, len(members)+1)

	g.Go(func() error {
		f, err := s.syncFile(ctx, src, path, root, opts, dryRun)
		if err != nil {
			return err
		}
		files[0] = f
		return nil
	})
	for i, member := range members {
		g.Go(func() error {
			doc, err := s.manifests.Read(member)
			if err != nil {
				return err
			}
			f, err := s.syncFile(ctx, src, member, doc, opts, dryRun)
			if err != nil {
				return err
			}
			files[i+1] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{SyncedFiles: files}, nil
}

func (s *Syncer) loadOptions(path string) (Options, error) {
	if s.options == nil {
		return Options{}, nil
	}
	return s.options.LoadOptions(path)
}

// =============================================================================
// Single-file orchestration
// =============================================================================

func (s *Syncer) syncFile(ctx context.Context, src Source, path string, doc *manifest.Document, opts Options, dryRun bool) (file SyncedFile, err error) {
	start := time.Now()
	defer func() {
		observability.Sync().OnManifestSynced(ctx, path, len(file.NewTypings), time.Since(start), err)
	}()

	deps := ExtractDependencies(doc, opts)
	candidates := candidatesFor(uniqueNames(deps))
	s.logger.Debug("syncing manifest", "path", path, "dependencies", len(deps), "candidates", len(candidates))

	resolved := make([]*AddedTyping, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			local, _ := findDependency(deps, c.CodePackageName)
			added, err := s.resolveCandidate(gctx, src, c, local.Version)
			if err != nil {
				return err
			}
			resolved[i] = added
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncedFile{}, err
	}

	added := mergeAdded(resolved)
	result := SyncedFile{
		FilePath:      path,
		Manifest:      doc,
		NewTypings:    added,
		UnusedTypings: unusedTypings(doc),
	}
	if len(added) == 0 {
		return result, nil
	}

	updated := doc.Clone()
	if err := updated.SetEntries(string(SectionDevelopment), devDependencies(doc, added)); err != nil {
		return SyncedFile{}, errors.Wrap(errors.ErrCodeInternal, err, "update %s", path)
	}
	result.Manifest = updated

	if dryRun {
		return result, nil
	}
	if err := s.manifests.Write(path, updated); err != nil {
		return SyncedFile{}, err
	}
	s.logger.Debug("wrote manifest", "path", path, "added", len(added))
	return result, nil
}

// resolveCandidate decides whether c gets a typings entry and at which
// version. A nil result means the candidate is skipped.
func (s *Syncer) resolveCandidate(ctx context.Context, src Source, c Candidate, localVersion string) (*AddedTyping, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type fetchResult struct {
		meta *PackageMetadata
		err  error
	}
	typesCh := make(chan fetchResult, 1)
	go func() {
		meta, err := src.Fetch(ctx, c.TypesPackageName)
		typesCh <- fetchResult{meta, err}
	}()

	code, err := src.Fetch(ctx, c.CodePackageName)
	if err != nil {
		return nil, registryError(err, c.CodePackageName)
	}
	if code == nil {
		s.logger.Debug("code package not found", "package", c.CodePackageName)
		return nil, nil
	}

	codeVersion, ok := s.closestVersion(code.Versions, localVersion, c.CodePackageName)
	if !ok {
		return nil, nil
	}
	if codeVersion.HasTypings {
		s.logger.Debug("package bundles its own typings", "package", c.CodePackageName, "version", codeVersion.Version)
		return nil, nil
	}

	var types fetchResult
	select {
	case types = <-typesCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if types.err != nil {
		return nil, registryError(types.err, c.TypesPackageName)
	}
	if types.meta == nil {
		return nil, nil
	}
	if types.meta.Deprecated {
		s.logger.Debug("typings package is deprecated", "package", c.TypesPackageName)
		return nil, nil
	}

	typesVersion, ok := s.closestVersion(types.meta.Versions, localVersion, c.TypesPackageName)
	if !ok {
		return nil, nil
	}
	return &AddedTyping{Candidate: c, Version: rangePrefix + typesVersion.Version}, nil
}

// closestVersion wraps ClosestMatchingVersion: an unparseable local range
// falls back to the newest version, and an empty version list skips the
// candidate.
func (s *Syncer) closestVersion(versions []VersionRecord, target, pkg string) (VersionRecord, bool) {
	v, err := ClosestMatchingVersion(versions, target)
	var parseErr *VersionParseError
	switch {
	case err == nil:
		return v, true
	case stderrors.As(err, &parseErr):
		s.logger.Debug("unparseable version range, using newest", "package", pkg, "range", target)
		return versions[0], true
	default:
		s.logger.Debug("no versions published", "package", pkg)
		return VersionRecord{}, false
	}
}

func registryError(err error, name string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeRegistry, err, "failed to fetch %s", name)
}

// mergeAdded drops skipped candidates; for duplicate typings packages the
// first candidate wins.
func mergeAdded(resolved []*AddedTyping) []AddedTyping {
	out := []AddedTyping{}
	seen := make(map[string]bool)
	for _, a := range resolved {
		if a == nil || seen[a.TypesPackageName] {
			continue
		}
		seen[a.TypesPackageName] = true
		out = append(out, *a)
	}
	return out
}

// devDependencies returns the new devDependencies section: added typings
// merged with the existing entries (existing entries win), sorted by name.
func devDependencies(doc *manifest.Document, added []AddedTyping) []manifest.Entry {
	existing := doc.Entries(string(SectionDevelopment))
	versions := make(map[string]string, len(existing)+len(added))
	for _, a := range added {
		versions[a.TypesPackageName] = a.Version
	}
	for _, e := range existing {
		versions[e.Name] = e.Version
	}

	entries := make([]manifest.Entry, 0, len(versions))
	for name, v := range versions {
		entries = append(entries, manifest.Entry{Name: name, Version: v})
	}
	slices.SortFunc(entries, func(a, b manifest.Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}

// unusedTypings lists declared @types packages whose code package is not
// declared anywhere in doc.
func unusedTypings(doc *manifest.Document) []string {
	declared := make(map[string]bool)
	var types []string
	for _, sec := range Sections {
		for _, e := range doc.Entries(string(sec)) {
			declared[e.Name] = true
			if IsTypesPackage(e.Name) && !slices.Contains(types, e.Name) {
				types = append(types, e.Name)
			}
		}
	}

	var unused []string
	for _, t := range types {
		if !declared[CodePackageName(t)] {
			unused = append(unused, t)
		}
	}
	return unused
}
