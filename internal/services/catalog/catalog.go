// Package catalog holds the whitelist of purchasable in-game effects and their
// prices. The built-in table is embedded; a YAML file may replace it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"gopkg.in/yaml.v3"
)

// MaxQuantity caps the number of units in one purchase.
const MaxQuantity = 64

// maxUnitPrice keeps price * quantity * (amplifier+1) far from int64 overflow.
const maxUnitPrice = 1_000_000_000

type Category string

const (
	CategoryItem           Category = "item"
	CategoryWeather        Category = "weather"
	CategoryTime           Category = "time"
	CategoryStatusEffect   Category = "status_effect"
	CategoryTeleport       Category = "teleport"
	CategoryCustomTeleport Category = "custom_teleport"
	CategoryCheckpoint     Category = "checkpoint"
)

var (
	ErrInvalidItem     = fmt.Errorf("%w: invalid item", apperr.ErrInvalidInput)
	ErrInvalidQuantity = fmt.Errorf("%w: invalid quantity", apperr.ErrInvalidInput)
	ErrPriceNotFound   = fmt.Errorf("%w: price not found", apperr.ErrNotFound)
)

//go:embed default.yaml
var defaultYAML []byte

// Effect is one catalog entry. Price is nil for effects that cannot be bought.
type Effect struct {
	ID          string       `yaml:"id"`
	Category    Category     `yaml:"category"`
	Price       *int64       `yaml:"price"`
	Destination *Coordinates `yaml:"destination"`
}

type Catalog struct {
	effects map[string]Effect
	ids     []string
}

type file struct {
	Effects []Effect `yaml:"effects"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a catalog from path, or the embedded one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	//nolint:errcheck
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file

	err := dec.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{effects: make(map[string]Effect, len(doc.Effects))}

	for i, e := range doc.Effects {
		err = checkEntry(e)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}

		if _, dup := c.effects[e.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, e.ID)
		}

		c.effects[e.ID] = e
		c.ids = append(c.ids, e.ID)
	}

	if len(c.effects) == 0 {
		return nil, errors.New("catalog is empty")
	}

	return c, nil
}

func checkEntry(e Effect) error {
	if e.ID == "" {
		return errors.New("missing id")
	}

	switch e.Category {
	case CategoryItem, CategoryWeather, CategoryTime, CategoryStatusEffect,
		CategoryCustomTeleport, CategoryCheckpoint:
		if e.Destination != nil {
			return fmt.Errorf("%s: destination only allowed for teleport", e.ID)
		}
	case CategoryTeleport:
		if e.Destination == nil {
			return fmt.Errorf("%s: teleport needs a destination", e.ID)
		}

		err := TeleportParams{Coordinates: *e.Destination}.validate()
		if err != nil {
			return fmt.Errorf("%s: %w", e.ID, err)
		}
	default:
		return fmt.Errorf("%s: unknown category %q", e.ID, e.Category)
	}

	if e.Price != nil && (*e.Price < 0 || *e.Price > maxUnitPrice) {
		return fmt.Errorf("%s: price %d out of range", e.ID, *e.Price)
	}

	return nil
}

// Lookup returns the entry for effectID.
func (c *Catalog) Lookup(effectID string) (Effect, bool) {
	e, ok := c.effects[effectID]
	return e, ok
}

// Validate checks that effectID is whitelisted and quantity is within 1..MaxQuantity.
func (c *Catalog) Validate(effectID string, quantity int) error {
	if _, ok := c.effects[effectID]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidItem, effectID)
	}

	if quantity < 1 || quantity > MaxQuantity {
		return fmt.Errorf("%w: %d not within 1..%d", ErrInvalidQuantity, quantity, MaxQuantity)
	}

	return nil
}

// PriceOf returns the total price of quantity units. Status effects cost
// base * (amplifier + 1) per unit.
func (c *Catalog) PriceOf(effectID string, quantity int, params Params) (int64, error) {
	e, ok := c.effects[effectID]
	if !ok || e.Price == nil {
		return 0, fmt.Errorf("%w: %q", ErrPriceNotFound, effectID)
	}

	unit := *e.Price

	if se, ok := params.(StatusEffectParams); ok && e.Category == CategoryStatusEffect {
		unit *= int64(se.Amplifier + 1)
	}

	return unit * int64(quantity), nil
}

// Listing is the public view of an effect.
type Listing struct {
	ID          string       `json:"id"`
	Category    Category     `json:"category"`
	UnitPrice   *int64       `json:"unitPrice"`
	Destination *Coordinates `json:"destination,omitempty"`
}

// List returns all effects sorted by category then id.
func (c *Catalog) List() []Listing {
	out := make([]Listing, 0, len(c.ids))
	for _, id := range c.ids {
		e := c.effects[id]
		out = append(out, Listing{ID: e.ID, Category: e.Category, UnitPrice: e.Price, Destination: e.Destination})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}

		return out[i].ID < out[j].ID
	})

	return out
}
