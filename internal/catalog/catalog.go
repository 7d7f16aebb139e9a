// Package catalog serves the read-only training video catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed workouts.yml
var defaultCatalog []byte

// Video is a single training video.
type Video struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// Category groups videos within a discipline.
type Category struct {
	Name   string  `yaml:"name" json:"name"`
	Videos []Video `yaml:"videos" json:"videos"`
}

// Discipline is a martial art with its training categories.
type Discipline struct {
	Name       string     `yaml:"name" json:"name"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Catalog is the ordered list of disciplines.
type Catalog struct {
	Disciplines []Discipline `yaml:"disciplines" json:"disciplines"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse workout catalog: %w", err)
	}
	if len(c.Disciplines) == 0 {
		return nil, errors.New("workout catalog has no disciplines")
	}
	for _, d := range c.Disciplines {
		if strings.TrimSpace(d.Name) == "" {
			return nil, errors.New("workout catalog has a discipline without a name")
		}
		for _, cat := range d.Categories {
			for _, v := range cat.Videos {
				if v.URL == "" {
					return nil, fmt.Errorf("video %q in %s/%s has no url", v.Title, d.Name, cat.Name)
				}
			}
		}
	}
	return &c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Discipline returns the discipline with the given name, ignoring case.
func (c *Catalog) Discipline(name string) (*Discipline, bool) {
	for i := range c.Disciplines {
		if strings.EqualFold(c.Disciplines[i].Name, name) {
			return &c.Disciplines[i], true
		}
	}
	return nil, false
}

// Category returns the named category within the discipline, ignoring case.
func (d *Discipline) Category(name string) (*Category, bool) {
	for i := range d.Categories {
		if strings.EqualFold(d.Categories[i].Name, name) {
			return &d.Categories[i], true
		}
	}
	return nil, false
}
