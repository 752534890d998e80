package rubric

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported rubric format")
	ErrSourceNotFound    = errors.New("source not found")
)

// IsRubricFile reports whether path has a rubric document extension.
func IsRubricFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadDocument reads and parses a JSON or YAML rubric document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data, filepath.Ext(path))
}

// ParseDocument parses raw document bytes; ext selects the decoder.
func ParseDocument(data []byte, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing rubric json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing rubric yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &doc, nil
}

// Load reads a rubric document and compiles it.
func Load(path string) (*Source, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	src := Compile(doc)
	src.Path = path
	if src.ID == "" {
		src.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return src, nil
}

// Catalog is the set of sources available in a rubric directory.
type Catalog struct {
	sources []*Source
	byID    map[string]*Source
}

// NewCatalog builds a catalog from already compiled sources, keeping the
// first source for any duplicated id.
func NewCatalog(sources ...*Source) *Catalog {
	c := &Catalog{byID: make(map[string]*Source, len(sources))}
	for _, s := range sources {
		if _, dup := c.byID[s.ID]; dup {
			continue
		}
		c.byID[s.ID] = s
		c.sources = append(c.sources, s)
	}
	return c
}

// LoadDir loads every rubric document in dir, ordered by file name. Files
// that fail to parse are reported together; the catalog still contains the
// sources that loaded.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rubric directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsRubricFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var sources []*Source
	var errs []error
	for _, name := range names {
		src, err := Load(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		sources = append(sources, src)
	}
	return NewCatalog(sources...), errors.Join(errs...)
}

// List returns the sources in load order.
func (c *Catalog) List() []*Source {
	return c.sources
}

// Get returns the source with the given id.
func (c *Catalog) Get(id string) (*Source, error) {
	if s, ok := c.byID[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
}
