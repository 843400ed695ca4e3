package typesync

import (
	"slices"
	"strings"

	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/manifest"
)

// Section is a dependency section of package.json. The value is the
// manifest key.
type Section string

const (
	SectionProduction  Section = "dependencies"
	SectionDevelopment Section = "devDependencies"
	SectionOptional    Section = "optionalDependencies"
	SectionPeer        Section = "peerDependencies"
)

// Sections lists every section in extraction order.
var Sections = []Section{SectionProduction, SectionDevelopment, SectionOptional, SectionPeer}

var sectionAliases = map[string]Section{
	"deps":                 SectionProduction,
	"prod":                 SectionProduction,
	"production":           SectionProduction,
	"dependencies":         SectionProduction,
	"dev":                  SectionDevelopment,
	"development":          SectionDevelopment,
	"devdependencies":      SectionDevelopment,
	"optional":             SectionOptional,
	"optionaldependencies": SectionOptional,
	"peer":                 SectionPeer,
	"peerdependencies":     SectionPeer,
}

// ParseSection maps a user-facing section name ("dev", "peer", ...) to a Section.
func ParseSection(s string) (Section, error) {
	if sec, ok := sectionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return sec, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"unknown dependency section %q (want one of deps, dev, optional, peer)", s)
}

// ParseSections parses every entry of names.
func ParseSections(names []string) ([]Section, error) {
	out := make([]Section, 0, len(names))
	for _, n := range names {
		s, err := ParseSection(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ShortName returns the alias used on the command line.
func (s Section) ShortName() string {
	switch s {
	case SectionProduction:
		return "deps"
	case SectionDevelopment:
		return "dev"
	case SectionOptional:
		return "optional"
	case SectionPeer:
		return "peer"
	}
	return string(s)
}

func (s Section) String() string { return string(s) }

// ExtractDependencies collects declared dependencies across all sections, in
// section order then manifest order. Ignored sections and packages are
// dropped, except @types packages which are always kept.
func ExtractDependencies(doc *manifest.Document, opts Options) []Dependency {
	var out []Dependency
	for _, sec := range Sections {
		ignoredSection := slices.Contains(opts.IgnoreSections, sec)
		for _, e := range doc.Entries(string(sec)) {
			if !IsTypesPackage(e.Name) && (ignoredSection || slices.Contains(opts.IgnorePackages, e.Name)) {
				continue
			}
			out = append(out, Dependency{Name: e.Name, Version: e.Version, Section: sec})
		}
	}
	return out
}

// uniqueNames returns the dependency names, first occurrence wins.
func uniqueNames(deps []Dependency) []string {
	seen := make(map[string]bool, len(deps))
	var out []string
	for _, d := range deps {
		if !seen[d.Name] {
			seen[d.Name] = true
			out = append(out, d.Name)
		}
	}
	return out
}

// findDependency returns the first declaration of name.
func findDependency(deps []Dependency, name string) (Dependency, bool) {
	for _, d := range deps {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}
