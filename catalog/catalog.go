// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/kindred/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error

	validate = validator.New()
)

// Catalog is an immutable, order-sorted set of questions. A nil *Catalog
// behaves as an empty catalog.
type Catalog struct {
	questions  []models.Question
	byID       map[string]int
	dependents map[string][]string
}

// Category is an ordered bucket of questions sharing a category name.
type Category struct {
	Name      string            `json:"name"`
	Questions []models.Question `json:"questions"`
}

type catalogFile struct {
	Questions []models.Question `yaml:"questions"`
}

// New validates the questions and returns them as a catalog sorted by order.
func New(questions []models.Question) (*Catalog, error) {
	sorted := make([]models.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	c := &Catalog{
		questions:  sorted,
		byID:       make(map[string]int, len(sorted)),
		dependents: make(map[string][]string),
	}

	var errs []error
	for i, q := range sorted {
		if err := validate.Struct(q); err != nil {
			errs = append(errs, fmt.Errorf("question %q: %w", q.ID, err))
			continue
		}
		if _, dup := c.byID[q.ID]; dup {
			errs = append(errs, fmt.Errorf("question %q: duplicate id", q.ID))
			continue
		}
		c.byID[q.ID] = i
	}

	for _, q := range sorted {
		if err := checkQuestion(c, q); err != nil {
			errs = append(errs, err)
			continue
		}
		if q.IsConditional() {
			c.dependents[q.ConditionalOn] = append(c.dependents[q.ConditionalOn], q.ID)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return c, nil
}

func checkQuestion(c *Catalog, q models.Question) error {
	switch q.Type {
	case models.TypeSingleChoice, models.TypeMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q: %s requires options", q.ID, q.Type)
		}
	case models.TypeScale:
		if q.ScaleMin != nil && q.ScaleMax != nil && *q.ScaleMin > *q.ScaleMax {
			return fmt.Errorf("question %q: scale_min > scale_max", q.ID)
		}
	}

	if !q.IsConditional() {
		return nil
	}
	// Dependencies point strictly backwards in order, so the graph is a
	// forest and cannot contain cycles.
	parent, ok := c.Get(q.ConditionalOn)
	if !ok {
		return fmt.Errorf("question %q: conditional_on %q does not exist", q.ID, q.ConditionalOn)
	}
	if parent.Order >= q.Order {
		return fmt.Errorf("question %q (order %d): conditional_on %q must have a smaller order, has %d",
			q.ID, q.Order, parent.ID, parent.Order)
	}
	if parent.Type == models.TypeMultipleChoice {
		return fmt.Errorf("question %q: cannot depend on multiple choice question %q", q.ID, parent.ID)
	}
	return nil
}

// Load reads a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse catalog: %w", ErrInvalidCatalog, err)
	}
	return New(f.Questions)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded catalog. It is parsed once per process and
// shared by every caller.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultCatalogYAML))
	})
	return defaultCatalog, defaultErr
}

// Questions returns the catalog in display order.
func (c *Catalog) Questions() []models.Question {
	if c == nil {
		return []models.Question{}
	}
	out := make([]models.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Get looks up a question by id.
func (c *Catalog) Get(id string) (models.Question, bool) {
	if c == nil {
		return models.Question{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

// Dependents returns the ids of questions whose conditional_on is id, in
// display order.
func (c *Catalog) Dependents(id string) []string {
	if c == nil {
		return nil
	}
	deps := c.dependents[id]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.questions)
}

// Categories groups questions by category, ordered by each category's first
// question.
func (c *Catalog) Categories() []Category {
	var out []Category
	index := make(map[string]int)
	for _, q := range c.Questions() {
		i, ok := index[q.Category]
		if !ok {
			i = len(out)
			index[q.Category] = i
			out = append(out, Category{Name: q.Category})
		}
		out[i].Questions = append(out[i].Questions, q)
	}
	return out
}
