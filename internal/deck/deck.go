// Package deck holds the catalogue of carousels the site shows: their
// items and per-carousel tuning.
package deck

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/showcase/internal/carousel"
)

//go:embed decks.yaml
var defaultDecks []byte

// ErrUnknownDeck is returned by Catalogue.Get for a name it does not hold.
var ErrUnknownDeck = errors.New("deck: unknown deck")

// Item is one card in a carousel.
type Item struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	Highlight   string   `yaml:"highlight" json:"highlight,omitempty"`
	Link        string   `yaml:"link" json:"link,omitempty"`
}

// Deck is a named carousel with its items.
type Deck struct {
	Name     string          `yaml:"name" json:"name"`
	Title    string          `yaml:"title" json:"title"`
	Carousel carousel.Config `yaml:"carousel" json:"carousel"`
	Items    []Item          `yaml:"items" json:"items"`
}

// Catalogue is an ordered set of decks.
type Catalogue struct {
	decks []Deck
	index map[string]int
}

type file struct {
	Decks []Deck `yaml:"decks"`
}

// Default returns the catalogue embedded in the binary.
func Default() (*Catalogue, error) {
	return Parse(defaultDecks)
}

// Load reads a catalogue from a YAML file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decks: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalogue. Unknown fields are
// rejected. Carousel tuning left out of the file takes the carousel
// defaults.
func Parse(data []byte) (*Catalogue, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse decks: %w", err)
	}
	return New(f.Decks)
}

// New builds a catalogue from decks after validating them.
func New(decks []Deck) (*Catalogue, error) {
	if len(decks) == 0 {
		return nil, errors.New("deck: catalogue is empty")
	}
	c := &Catalogue{
		decks: make([]Deck, 0, len(decks)),
		index: make(map[string]int, len(decks)),
	}
	for _, d := range decks {
		d.Carousel = d.Carousel.WithDefaults()
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("deck %q: duplicate name", d.Name)
		}
		c.index[d.Name] = len(c.decks)
		c.decks = append(c.decks, d)
	}
	return c, nil
}

func (d Deck) validate() error {
	if d.Name == "" {
		return errors.New("deck: name is required")
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("deck %q: %w", d.Name, carousel.ErrNoItems)
	}
	if err := d.Carousel.Validate(); err != nil {
		return fmt.Errorf("deck %q: %w", d.Name, err)
	}
	if d.Carousel.StartIndex >= len(d.Items) {
		return fmt.Errorf("deck %q: %w", d.Name, &carousel.OutOfRangeError{
			Op:    "StartIndex",
			Index: d.Carousel.StartIndex,
			Len:   len(d.Items),
		})
	}
	return nil
}

// Get returns the deck called name.
func (c *Catalogue) Get(name string) (Deck, error) {
	i, ok := c.index[name]
	if !ok {
		return Deck{}, fmt.Errorf("%w: %q", ErrUnknownDeck, name)
	}
	return c.decks[i], nil
}

// Names returns deck names in catalogue order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.decks))
	for i, d := range c.decks {
		names[i] = d.Name
	}
	return names
}

// All returns the decks in catalogue order.
func (c *Catalogue) All() []Deck {
	out := make([]Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// NewEngine creates a carousel engine for this deck.
func (d Deck) NewEngine(sched carousel.Scheduler) (*carousel.Engine, error) {
	return carousel.New(len(d.Items), d.Carousel, sched)
}
