// Package workspace lists the member packages of a JavaScript monorepo.
//
// Workspace globs are read from, in order:
//   - package.json "workspaces" as an array (npm, Bun, Yarn)
//   - package.json "workspaces.packages" (Yarn; "nohoist" is ignored)
//   - pnpm-workspace.yaml "packages"
//
// Globs are matched against directories below the root. Only directories
// that contain a package.json count, node_modules is never entered, and
// patterns starting with "!" exclude matches.
package workspace

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/manifest"
)

// PnpmWorkspaceFile is the pnpm workspace definition file name.
const PnpmWorkspaceFile = "pnpm-workspace.yaml"

const manifestName = "package.json"

// Resolver expands workspace globs on a filesystem.
type Resolver struct {
	// FS returns the filesystem rooted at a monorepo root.
	FS func(root string) fs.FS
}

// NewResolver returns a Resolver over the local filesystem.
func NewResolver() *Resolver {
	return &Resolver{FS: os.DirFS}
}

// Workspaces returns the manifest paths (<root>/<dir>/package.json) of every
// workspace member declared by doc. Members matching an ignored glob are
// dropped. A monorepo without workspace configuration yields nil.
func (r *Resolver) Workspaces(doc *manifest.Document, root string, ignored []string) ([]string, error) {
	fsys := r.FS(root)
	patterns, err := Patterns(doc, fsys)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	dirs, err := expand(fsys, patterns, normalize(ignored))
	if err != nil {
		return nil, err
	}

	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Join(root, filepath.FromSlash(d), manifestName)
	}
	return out, nil
}

// Patterns returns the workspace globs declared by doc, falling back to
// pnpm-workspace.yaml in fsys. A missing or unreadable pnpm file is treated
// as "no workspaces".
func Patterns(doc *manifest.Document, fsys fs.FS) ([]string, error) {
	if raw, ok := doc.Get("workspaces"); ok {
		return fromManifest(raw), nil
	}

	data, err := fs.ReadFile(fsys, PnpmWorkspaceFile)
	if err != nil {
		return nil, nil
	}
	var pnpm struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &pnpm); err != nil {
		return nil, nil
	}
	return pnpm.Packages, nil
}

// fromManifest reads "workspaces" either as an array or as Yarn's
// {"packages": [...]} object. Anything else declares no workspaces.
func fromManifest(raw json.RawMessage) []string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var yarn struct {
		Packages []string `json:"packages"`
	}
	if json.Unmarshal(raw, &yarn) == nil {
		return yarn.Packages
	}
	return nil
}

// expand globs patterns to member directories: pattern order, then lexical,
// without duplicates.
func expand(fsys fs.FS, patterns, ignored []string) ([]string, error) {
	var include, exclude []string
	for _, p := range normalize(patterns) {
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, neg)
			continue
		}
		include = append(include, p)
	}
	exclude = append(exclude, ignored...)

	for _, p := range slices.Concat(include, exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid workspace pattern %q", p)
		}
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, p := range include {
		matches, err := doublestar.Glob(fsys, p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "expand workspace pattern %q", p)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if seen[m] || !isMember(fsys, m) || matchesAny(exclude, m) {
				continue
			}
			seen[m] = true
			dirs = append(dirs, m)
		}
	}
	return dirs, nil
}

func isMember(fsys fs.FS, dir string) bool {
	if dir == "." || slices.Contains(strings.Split(dir, "/"), "node_modules") {
		return false
	}
	info, err := fs.Stat(fsys, path.Join(dir, manifestName))
	return err == nil && !info.IsDir()
}

func matchesAny(patterns []string, dir string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, dir); err == nil && ok {
			return true
		}
	}
	return false
}

// normalize converts patterns to the slash-separated, root-relative form
// used by io/fs.
func normalize(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		neg := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		p = strings.TrimPrefix(p, "./")
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if neg {
			p = "!" + p
		}
		out = append(out, p)
	}
	return out
}
