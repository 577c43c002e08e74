// Package patterns is the static catalog behind the pattern browser.
package patterns

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var catalogYAML []byte

// ErrUnknown is wrapped by lookups that match nothing.
var ErrUnknown = errors.New("not in the pattern catalog")

// Language is a language code templates can be requested in.
type Language struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Ext   string `yaml:"ext" json:"ext"`
}

// Pattern is one technique within a topic.
type Pattern struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Topic groups related patterns.
type Topic struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Patterns []Pattern `json:"patterns"`
}

// Catalog is the full list of topics.
type Catalog struct {
	DefaultLanguage string
	Languages       []Language
	Topics          []Topic
}

type catalogFile struct {
	DefaultLanguage string     `yaml:"default_language"`
	Languages       []Language `yaml:"languages"`
	Topics          []struct {
		Name     string   `yaml:"name"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"topics"`
}

// Parse decodes a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("error parsing pattern catalog: %w", err)
	}
	c := &Catalog{DefaultLanguage: file.DefaultLanguage, Languages: file.Languages}
	for _, t := range file.Topics {
		topic := Topic{Name: t.Name, Slug: slug.Make(t.Name)}
		for _, name := range t.Patterns {
			topic.Patterns = append(topic.Patterns, Pattern{Name: name, Slug: slug.Make(name)})
		}
		c.Topics = append(c.Topics, topic)
	}
	if _, err := c.Language(c.DefaultLanguage); err != nil {
		return nil, fmt.Errorf("default language %q is not listed", c.DefaultLanguage)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func same(key, name, slugged string) bool {
	key = strings.TrimSpace(key)
	return key == slugged || strings.EqualFold(key, name)
}

// Topic finds a topic by slug or name.
func (c *Catalog) Topic(key string) (*Topic, error) {
	for i := range c.Topics {
		if same(key, c.Topics[i].Name, c.Topics[i].Slug) {
			return &c.Topics[i], nil
		}
	}
	return nil, fmt.Errorf("topic %q: %w", key, ErrUnknown)
}

// Pattern finds a pattern of the topic by slug or name.
func (t *Topic) Pattern(key string) (*Pattern, error) {
	for i := range t.Patterns {
		if same(key, t.Patterns[i].Name, t.Patterns[i].Slug) {
			return &t.Patterns[i], nil
		}
	}
	return nil, fmt.Errorf("pattern %q in %s: %w", key, t.Name, ErrUnknown)
}

// Lookup finds a topic and one of its patterns.
func (c *Catalog) Lookup(topic, pattern string) (*Topic, *Pattern, error) {
	t, err := c.Topic(topic)
	if err != nil {
		return nil, nil, err
	}
	p, err := t.Pattern(pattern)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// Language validates a template language id; "" selects the default.
func (c *Catalog) Language(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = c.DefaultLanguage
	}
	for _, lang := range c.Languages {
		if lang.ID == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("language %q: %w", id, ErrUnknown)
}

// Filename names a downloaded template of p in the given language.
func (c *Catalog) Filename(p *Pattern, language string) string {
	for _, lang := range c.Languages {
		if lang.ID == language && lang.Ext != "" {
			return p.Slug + "." + lang.Ext
		}
	}
	return p.Slug + ".txt"
}
