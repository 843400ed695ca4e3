package manifest

import (
	"bytes"
	"os"
	"strings"

	"github.com/jeffijoe/typesync/pkg/errors"
)

const defaultIndent = "  "

// ReadFile reads and parses the manifest at path.
func ReadFile(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s is not a valid package.json", path)
	}
	return doc, nil
}

// WriteFile serializes doc to path, keeping the indentation and trailing
// newline of the file currently on disk.
func WriteFile(path string, doc *Document) error {
	current, err := readFile(path)
	if err != nil {
		return err
	}

	data, err := doc.Marshal(DetectIndent(current))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "serialize %s", path)
	}
	if bytes.HasSuffix(current, []byte("\n")) {
		data = append(data, '\n')
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

// DetectIndent returns the leading whitespace of the first indented line,
// or two spaces when no line is indented.
func DetectIndent(data []byte) string {
	for line := range strings.SplitSeq(string(data), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		ws := line[:len(line)-len(trimmed)]
		if ws[0] == '\t' {
			return "\t"
		}
		return strings.TrimRight(ws, "\t")
	}
	return defaultIndent
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist.", path)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// FileService reads and writes manifests on the local filesystem.
type FileService struct{}

// Read implements the sync engine's manifest store.
func (FileService) Read(path string) (*Document, error) { return ReadFile(path) }

// Write implements the sync engine's manifest store.
func (FileService) Write(path string, doc *Document) error { return WriteFile(path, doc) }
