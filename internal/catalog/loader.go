package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var documentSchema string

// ErrInvalidDocument is returned for files that fail schema validation
var ErrInvalidDocument = errors.New("invalid catalog document")

// Loader reads course catalog documents from a directory tree
type Loader struct {
	rootDir string
	schema  *gojsonschema.Schema
	logger  *slog.Logger
}

// NewLoader compiles the document schema for rootDir
func NewLoader(rootDir string, logger *slog.Logger) (*Loader, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{rootDir: rootDir, schema: schema, logger: logger}, nil
}

// Load returns every valid document under the root, sorted by path. Files
// that fail to parse or validate are logged and skipped.
func (l *Loader) Load() ([]*CourseDocument, error) {
	var paths []string
	err := filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking catalog %s: %w", l.rootDir, err)
	}
	sort.Strings(paths)

	docs := make([]*CourseDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping catalog document", "path", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	l.logger.Info("catalog loaded", "dir", l.rootDir, "documents", len(docs), "files", len(paths))
	return docs, nil
}

// LoadFile parses and validates a single document
func (l *Loader) LoadFile(path string) (*CourseDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(data, path)
}

// Parse validates raw YAML against the schema before decoding it
func (l *Loader) Parse(data []byte, path string) (*CourseDocument, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	result, err := l.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	var doc CourseDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	doc.Path = path
	return &doc, nil
}
