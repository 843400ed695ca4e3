package typesync

import (
	"context"

	"github.com/jeffijoe/typesync/pkg/manifest"
)

// VersionRecord is one published version of a package.
type VersionRecord struct {
	Version    string `json:"version"`
	HasTypings bool   `json:"hasTypings"` // version ships its own "types"/"typings"
}

// PackageMetadata is the registry information typesync needs about a package.
type PackageMetadata struct {
	Name          string          `json:"name"`
	LatestVersion string          `json:"latestVersion"`
	Deprecated    bool            `json:"deprecated"` // newest version is deprecated
	Versions      []VersionRecord `json:"versions"`   // newest first
}

// Candidate pairs a code package with the @types package that might type it.
type Candidate struct {
	TypingsName      string
	CodePackageName  string
	TypesPackageName string
}

// Dependency is a declared dependency together with the section it came from.
type Dependency struct {
	Name    string
	Version string
	Section Section
}

// Options narrows which declared dependencies are considered.
type Options struct {
	IgnoreSections []Section
	IgnorePackages []string
	IgnoreProjects []string // workspace globs excluded from the run
}

// AddedTyping is a typings package added (or, in a dry run, to be added).
type AddedTyping struct {
	Candidate
	Version string // the written range, e.g. "~1.2.0"
}

// SyncedFile is the outcome for one manifest.
type SyncedFile struct {
	FilePath string
	// Manifest is the document as written (or as it would be written in a
	// dry run).
	Manifest   *manifest.Document
	NewTypings []AddedTyping
	// UnusedTypings lists declared @types packages whose code package is not
	// declared in the same manifest. Nothing is removed.
	UnusedTypings []string
}

// Result is the outcome of a [Syncer.Sync] call. The root manifest comes
// first, followed by workspace members in discovery order.
type Result struct {
	SyncedFiles []SyncedFile
}

// NewTypingsCount returns the number of typings added across all files.
func (r *Result) NewTypingsCount() int {
	n := 0
	for _, f := range r.SyncedFiles {
		n += len(f.NewTypings)
	}
	return n
}

// Source looks up package metadata. A (nil, nil) return means the package
// does not exist.
type Source interface {
	Fetch(ctx context.Context, name string) (*PackageMetadata, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context, name string) (*PackageMetadata, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, name string) (*PackageMetadata, error) {
	return f(ctx, name)
}

// ManifestStore reads and writes package.json documents.
type ManifestStore interface {
	Read(path string) (*manifest.Document, error)
	Write(path string, doc *manifest.Document) error
}

// WorkspaceResolver lists member manifests of a monorepo root.
type WorkspaceResolver interface {
	Workspaces(doc *manifest.Document, root string, ignored []string) ([]string, error)
}

// OptionsLoader resolves the effective options for the manifest at path.
type OptionsLoader interface {
	LoadOptions(manifestPath string) (Options, error)
}
