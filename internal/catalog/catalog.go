// Package catalog holds the read-only table of drink categories. Order
// follows the configuration file so keyboards render predictably.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category struct {
	ID            string   `yaml:"-"`
	Name          string   `yaml:"name"`
	Strength      float64  `yaml:"strength"`
	Subtypes      []string `yaml:"subtypes"`
	DefaultVolume int      `yaml:"default_volume"`
}

// Subtype returns the subtype at idx.
func (c Category) Subtype(idx int) (string, bool) {
	if idx < 0 || idx >= len(c.Subtypes) {
		return "", false
	}
	return c.Subtypes[idx], true
}

func (c Category) HasSubtype(name string) bool {
	for _, s := range c.Subtypes {
		if s == name {
			return true
		}
	}
	return false
}

// VolumePresets are the one-tap volume choices offered after a subtype.
func (c Category) VolumePresets() []int {
	return []int{c.DefaultVolume, c.DefaultVolume * 2}
}

func (c Category) IsPreset(volume int) bool {
	for _, v := range c.VolumePresets() {
		if v == volume {
			return true
		}
	}
	return false
}

func (c Category) validate() error {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return errors.New("category id is empty")
	}
	if strings.ContainsAny(id, ": ") {
		return fmt.Errorf("category %q: id must not contain ':' or spaces", id)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category %q: name is empty", id)
	}
	if c.Strength <= 0 || c.Strength > 100 {
		return fmt.Errorf("category %q: strength %.1f out of range (0,100]", id, c.Strength)
	}
	if c.DefaultVolume <= 0 {
		return fmt.Errorf("category %q: default_volume must be positive", id)
	}
	if len(c.Subtypes) == 0 {
		return fmt.Errorf("category %q: no subtypes", id)
	}
	return nil
}

type Catalog struct {
	categories []Category
	index      map[string]int
}

func New(categories ...Category) (*Catalog, error) {
	c := &Catalog{}
	if err := c.set(categories); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New for fixed tables known to be valid.
func MustNew(categories ...Category) *Catalog {
	c, err := New(categories...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) set(categories []Category) error {
	index := make(map[string]int, len(categories))
	for i, cat := range categories {
		if err := cat.validate(); err != nil {
			return err
		}
		if _, dup := index[cat.ID]; dup {
			return fmt.Errorf("duplicate category %q", cat.ID)
		}
		index[cat.ID] = i
	}
	c.categories = append([]Category(nil), categories...)
	c.index = index
	return nil
}

// UnmarshalYAML reads a mapping of id -> category, keeping key order.
func (c *Catalog) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: alcohol_types must be a mapping", node.Line)
	}
	categories := make([]Category, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var cat Category
		if err := value.Decode(&cat); err != nil {
			return fmt.Errorf("alcohol type %q: %w", key.Value, err)
		}
		cat.ID = key.Value
		categories = append(categories, cat)
	}
	return c.set(categories)
}

func (c *Catalog) Lookup(id string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// Name returns the display name, or the id itself for unknown categories
// that may still be referenced by stored records.
func (c *Catalog) Name(id string) string {
	if cat, ok := c.Lookup(id); ok {
		return cat.Name
	}
	return id
}

func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	return append([]Category(nil), c.categories...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.categories)
}
