package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"rice-bot/internal/domain/entity"
)

//go:embed diseases.yaml
var defaultData []byte

type entry struct {
	Label          string `yaml:"label"`
	entity.Disease `yaml:",inline"`
}

type document struct {
	Diseases []entry `yaml:"diseases"`
}

// Catalog справочник заболеваний по меткам классов модели.
type Catalog struct {
	byLabel map[string]entity.Disease
	labels  []string
}

// Default возвращает встроенный справочник.
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// Parse разбирает YAML справочника и проверяет записи.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Diseases) == 0 {
		return nil, errors.New("catalog has no diseases")
	}

	c := &Catalog{byLabel: make(map[string]entity.Disease, len(doc.Diseases))}
	for i, e := range doc.Diseases {
		if e.Label == "" {
			return nil, fmt.Errorf("catalog entry %d: label is required", i)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %q: name is required", e.Label)
		}
		if _, dup := c.byLabel[e.Label]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate label", e.Label)
		}
		c.byLabel[e.Label] = e.Disease
		c.labels = append(c.labels, e.Label)
	}
	sort.Strings(c.labels)

	return c, nil
}

// Lookup возвращает копию записи по метке.
func (c *Catalog) Lookup(label string) (entity.Disease, bool) {
	d, ok := c.byLabel[label]
	if !ok {
		return entity.Disease{}, false
	}
	return d.Clone(), true
}

// Labels отсортированный список меток.
func (c *Catalog) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Len количество записей.
func (c *Catalog) Len() int {
	return len(c.labels)
}
