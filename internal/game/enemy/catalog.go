// Package enemy builds enemy combatants from an embedded template catalog.
package enemy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

//go:embed enemies.yaml
var embeddedEnemies []byte

// ErrInvalidTarget is returned for an unknown enemy tag.
var ErrInvalidTarget = apperrors.New(apperrors.CodeInvalidTarget, "invalid enemy type")

// Template describes one enemy type.
type Template struct {
	Tag        string `yaml:"tag"`
	Name       string `yaml:"name"`
	Health     int    `yaml:"health"`
	Strength   int    `yaml:"strength"`
	Magic      int    `yaml:"magic"`
	XPReward   int    `yaml:"xp_reward"`
	GoldReward int    `yaml:"gold_reward"`
	MinLevel   int    `yaml:"min_level"`
	// MaxLevel of zero means no upper bound.
	MaxLevel int `yaml:"max_level"`
}

type catalogFile struct {
	Enemies []Template `yaml:"enemies"`
}

// Catalog holds enemy templates keyed by tag.
type Catalog struct {
	templates map[string]Template
	order     []string
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embeddedEnemies)
}

// Parse decodes and validates a YAML enemy catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse enemy catalog: %w", err)
	}
	if len(file.Enemies) == 0 {
		return nil, fmt.Errorf("enemy catalog is empty")
	}

	c := &Catalog{templates: make(map[string]Template, len(file.Enemies))}
	for i, tmpl := range file.Enemies {
		tmpl.Tag = normalizeTag(tmpl.Tag)
		if err := validate(tmpl); err != nil {
			return nil, fmt.Errorf("enemy %d: %w", i, err)
		}
		if _, exists := c.templates[tmpl.Tag]; exists {
			return nil, fmt.Errorf("enemy %d: duplicate tag %q", i, tmpl.Tag)
		}
		c.templates[tmpl.Tag] = tmpl
		c.order = append(c.order, tmpl.Tag)
	}
	return c, nil
}

func validate(t Template) error {
	switch {
	case t.Tag == "":
		return fmt.Errorf("tag is required")
	case strings.TrimSpace(t.Name) == "":
		return fmt.Errorf("%s: name is required", t.Tag)
	case t.Health <= 0:
		return fmt.Errorf("%s: health must be positive", t.Tag)
	case t.Strength < 0 || t.Magic < 0:
		return fmt.Errorf("%s: stats must not be negative", t.Tag)
	case t.XPReward < 0 || t.GoldReward < 0:
		return fmt.Errorf("%s: rewards must not be negative", t.Tag)
	case t.MinLevel < 1:
		return fmt.Errorf("%s: min_level must be at least 1", t.Tag)
	case t.MaxLevel != 0 && t.MaxLevel < t.MinLevel:
		return fmt.Errorf("%s: max_level below min_level", t.Tag)
	}
	return nil
}

// Tags returns the known enemy tags in catalog order.
func (c *Catalog) Tags() []string {
	return append([]string(nil), c.order...)
}

// Template returns the template for tag.
func (c *Catalog) Template(tag string) (Template, bool) {
	t, ok := c.templates[normalizeTag(tag)]
	return t, ok
}

// Create returns a fresh, full-health enemy for tag.
func (c *Catalog) Create(tag string) (*combat.Combatant, error) {
	t, ok := c.Template(tag)
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeInvalidTarget,
			fmt.Sprintf("unknown enemy type %q", tag),
			map[string]string{"tag": tag},
		)
	}
	return t.Combatant(), nil
}

// ForLevel returns an enemy whose tier covers the player level. Levels
// below every tier get the lowest one; levels above every tier get the
// highest.
func (c *Catalog) ForLevel(level int) (*combat.Combatant, error) {
	tiers := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinLevel < tiers[j].MinLevel })

	for _, t := range tiers {
		if level >= t.MinLevel && (t.MaxLevel == 0 || level <= t.MaxLevel) {
			return t.Combatant(), nil
		}
	}
	if len(tiers) == 0 {
		return nil, ErrInvalidTarget
	}
	if level < tiers[0].MinLevel {
		return tiers[0].Combatant(), nil
	}
	return tiers[len(tiers)-1].Combatant(), nil
}

// Combatant builds a full-health enemy from the template.
func (t Template) Combatant() *combat.Combatant {
	return &combat.Combatant{
		Name:      t.Name,
		Class:     combat.ClassUnspecified,
		Health:    t.Health,
		MaxHealth: t.Health,
		Strength:  t.Strength,
		Magic:     t.Magic,
		Rewards:   combat.Rewards{XP: t.XPReward, Gold: t.GoldReward},
	}
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
