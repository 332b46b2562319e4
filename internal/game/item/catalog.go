// Package item loads the embedded item catalog: consumables, weapons and
// armor with the stat effect each one grants.
package item

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

//go:embed items.yaml
var embeddedItems []byte

// Type classifies how an item is used.
type Type string

const (
	TypeConsumable Type = "consumable"
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
)

// Equipment reports whether the type occupies an equipment slot.
func (t Type) Equipment() bool {
	return t == TypeWeapon || t == TypeArmor
}

// ParseType resolves a slot or item type name, case-insensitively.
func ParseType(value string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(value))); t {
	case TypeConsumable, TypeWeapon, TypeArmor:
		return t, nil
	}
	return "", apperrors.WithMetadata(
		apperrors.CodeInvalidItemType,
		fmt.Sprintf("unknown item type %q", value),
		map[string]string{"type": value},
	)
}

// Stat is a character attribute an effect changes.
type Stat string

const (
	StatHealth    Stat = "health"
	StatMaxHealth Stat = "max_health"
	StatStrength  Stat = "strength"
	StatMagic     Stat = "magic"
)

// Effect adds Value to Stat.
type Effect struct {
	Stat  Stat
	Value int
}

// ParseEffect parses the "stat:value" form used in the catalog.
func ParseEffect(value string) (Effect, error) {
	stat, amount, ok := strings.Cut(value, ":")
	if !ok {
		return Effect{}, fmt.Errorf("effect %q must be stat:value", value)
	}
	n, err := strconv.Atoi(strings.TrimSpace(amount))
	if err != nil {
		return Effect{}, fmt.Errorf("effect %q: %w", value, err)
	}
	e := Effect{Stat: Stat(strings.ToLower(strings.TrimSpace(stat))), Value: n}
	switch e.Stat {
	case StatHealth, StatMaxHealth, StatStrength, StatMagic:
	default:
		return Effect{}, fmt.Errorf("effect %q: unknown stat %q", value, e.Stat)
	}
	return e, nil
}

func (e Effect) String() string {
	return fmt.Sprintf("%s:%d", e.Stat, e.Value)
}

// UnmarshalYAML decodes the scalar "stat:value" form.
func (e *Effect) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseEffect(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Item is one catalog entry.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        Type   `yaml:"type"`
	Effect      Effect `yaml:"effect"`
	Cost        int    `yaml:"cost"`
	Description string `yaml:"description"`
}

// SellPrice is what a merchant pays for the item.
func (i Item) SellPrice() int {
	return i.Cost / 2
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// Catalog holds items keyed by id.
type Catalog struct {
	items map[string]Item
	order []string
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embeddedItems)
}

// Parse decodes and validates a YAML item catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse item catalog: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("item catalog is empty")
	}

	c := &Catalog{items: make(map[string]Item, len(file.Items))}
	for i, it := range file.Items {
		it.ID = normalizeID(it.ID)
		if err := validate(it); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if _, exists := c.items[it.ID]; exists {
			return nil, fmt.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		c.items[it.ID] = it
		c.order = append(c.order, it.ID)
	}
	return c, nil
}

func validate(it Item) error {
	switch {
	case it.ID == "":
		return fmt.Errorf("id is required")
	case strings.TrimSpace(it.Name) == "":
		return fmt.Errorf("%s: name is required", it.ID)
	case it.Type != TypeConsumable && !it.Type.Equipment():
		return fmt.Errorf("%s: invalid type %q", it.ID, it.Type)
	case it.Effect.Stat == "":
		return fmt.Errorf("%s: effect is required", it.ID)
	case it.Effect.Value <= 0:
		return fmt.Errorf("%s: effect value must be positive", it.ID)
	case it.Type.Equipment() && it.Effect.Stat == StatHealth:
		return fmt.Errorf("%s: equipment cannot grant current health", it.ID)
	case it.Cost < 0:
		return fmt.Errorf("%s: cost must not be negative", it.ID)
	}
	return nil
}

// IDs returns item ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[normalizeID(id)]
	return it, ok
}

// Get is Item with an ITEM_NOT_FOUND error for unknown ids.
func (c *Catalog) Get(id string) (Item, error) {
	it, ok := c.Item(id)
	if !ok {
		return Item{}, apperrors.WithMetadata(
			apperrors.CodeItemNotFound,
			fmt.Sprintf("unknown item %q", id),
			map[string]string{"item": id},
		)
	}
	return it, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
