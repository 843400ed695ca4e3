// Package config loads typesync project configuration.
//
// Configuration is looked up next to the manifest being synced. The first
// source found wins:
//
//	package.json        "typesync" key
//	.typesyncrc         YAML or JSON
//	.typesyncrc.json
//	.typesyncrc.yaml
//	.typesyncrc.yml
//	.typesyncrc.toml
//
// Command-line values replace file values key by key; lists are never merged.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/manifest"
	"github.com/jeffijoe/typesync/pkg/typesync"
)

// File is the decoded project configuration. A nil list means "not set".
type File struct {
	IgnoreDeps     []string `json:"ignoreDeps" yaml:"ignoreDeps" toml:"ignoreDeps"`
	IgnorePackages []string `json:"ignorePackages" yaml:"ignorePackages" toml:"ignorePackages"`
	IgnoreProjects []string `json:"ignoreProjects" yaml:"ignoreProjects" toml:"ignoreProjects"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

// candidates lists the rc files in lookup order, after package.json.
var candidates = []struct {
	name   string
	format format
}{
	{".typesyncrc", formatYAML},
	{".typesyncrc.json", formatJSON},
	{".typesyncrc.yaml", formatYAML},
	{".typesyncrc.yml", formatYAML},
	{".typesyncrc.toml", formatTOML},
}

// Load reads the configuration for the project in dir. It returns the path
// the configuration came from, or "" when there is none.
func Load(dir string) (File, string, error) {
	pkgPath := filepath.Join(dir, "package.json")
	if doc, err := manifest.ReadFile(pkgPath); err == nil {
		if raw, ok := doc.Get("typesync"); ok {
			f, err := decode(raw, formatJSON)
			if err != nil {
				return File{}, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid \"typesync\" key in %s", pkgPath)
			}
			return f, pkgPath, nil
		}
	}

	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return File{}, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
		f, err := decode(data, c.format)
		if err != nil {
			return File{}, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config file %s", path)
		}
		return f, path, nil
	}
	return File{}, "", nil
}

func decode(data []byte, f format) (File, error) {
	var out File
	var err error
	switch f {
	case formatJSON:
		err = json.Unmarshal(data, &out)
	case formatYAML:
		err = yaml.Unmarshal(data, &out)
	case formatTOML:
		err = toml.Unmarshal(data, &out)
	}
	return out, err
}

// Merge returns file with every key set in cli replaced.
func Merge(file, cli File) File {
	if cli.IgnoreDeps != nil {
		file.IgnoreDeps = cli.IgnoreDeps
	}
	if cli.IgnorePackages != nil {
		file.IgnorePackages = cli.IgnorePackages
	}
	if cli.IgnoreProjects != nil {
		file.IgnoreProjects = cli.IgnoreProjects
	}
	return file
}

// Options converts f to sync options.
func (f File) Options() (typesync.Options, error) {
	sections, err := typesync.ParseSections(f.IgnoreDeps)
	if err != nil {
		return typesync.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid ignoreDeps")
	}
	return typesync.Options{
		IgnoreSections: sections,
		IgnorePackages: f.IgnorePackages,
		IgnoreProjects: f.IgnoreProjects,
	}, nil
}

// Loader implements typesync.OptionsLoader on top of [Load] and [Merge].
type Loader struct {
	Overrides File
	Logger    *log.Logger
}

// NewLoader returns a Loader applying overrides on top of file configuration.
func NewLoader(overrides File, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{Overrides: overrides, Logger: logger}
}

// LoadOptions reads the configuration next to manifestPath and applies the
// overrides.
func (l *Loader) LoadOptions(manifestPath string) (typesync.Options, error) {
	file, source, err := Load(filepath.Dir(manifestPath))
	if err != nil {
		return typesync.Options{}, err
	}
	if source != "" {
		l.Logger.Debug("loaded config", "path", source)
	}
	return Merge(file, l.Overrides).Options()
}

var _ typesync.OptionsLoader = (*Loader)(nil)
