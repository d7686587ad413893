package character

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned when a template ID is not in the store.
var ErrTemplateNotFound = errors.New("character template not found")

// Provider supplies templates to the combat engine.
type Provider interface {
	Template(ctx context.Context, id string) (*Template, error)
}

// Catalog is an in-memory Provider backed by YAML template files.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{templates: make(map[string]*Template)}
}

// Add validates and registers t, replacing any template with the same ID.
func (c *Catalog) Add(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[t.ID] = t
	return nil
}

// Template returns the template registered under id.
//
// Postcondition: Returns ErrTemplateNotFound (wrapped) for unknown ids.
func (c *Catalog) Template(_ context.Context, id string) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t, nil
}

// IDs returns all registered template IDs in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadTemplate parses a single YAML template document.
func LoadTemplate(data []byte) (*Template, error) {
	var t Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing character template: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadDirectory loads every .yaml file in dir into a new Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Catalog with all templates, or the first error.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory %q: %w", dir, err)
	}
	c := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		t, err := LoadTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}
