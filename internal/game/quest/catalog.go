// Package quest loads the embedded quest catalog.
package quest

import (
	_ "embed"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

//go:embed quests.yaml
var embeddedQuests []byte

// Quest is one catalog entry. An empty Prerequisite means none.
type Quest struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	RewardXP      int    `yaml:"reward_xp"`
	RewardGold    int    `yaml:"reward_gold"`
	RequiredLevel int    `yaml:"required_level"`
	Prerequisite  string `yaml:"prerequisite"`
}

type catalogFile struct {
	Quests []Quest `yaml:"quests"`
}

// Catalog holds quests keyed by id.
type Catalog struct {
	quests map[string]Quest
	order  []string
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embeddedQuests)
}

// Parse decodes and validates a YAML quest catalog. Every prerequisite must
// name a quest in the same catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse quest catalog: %w", err)
	}
	if len(file.Quests) == 0 {
		return nil, fmt.Errorf("quest catalog is empty")
	}

	c := &Catalog{quests: make(map[string]Quest, len(file.Quests))}
	for i, q := range file.Quests {
		q.ID = normalizeID(q.ID)
		q.Prerequisite = normalizeID(q.Prerequisite)
		if err := validate(q); err != nil {
			return nil, fmt.Errorf("quest %d: %w", i, err)
		}
		if _, exists := c.quests[q.ID]; exists {
			return nil, fmt.Errorf("quest %d: duplicate id %q", i, q.ID)
		}
		c.quests[q.ID] = q
		c.order = append(c.order, q.ID)
	}
	for _, id := range c.order {
		q := c.quests[id]
		if q.Prerequisite == "" {
			continue
		}
		if _, ok := c.quests[q.Prerequisite]; !ok {
			return nil, fmt.Errorf("quest %s: unknown prerequisite %q", id, q.Prerequisite)
		}
		if q.Prerequisite == id {
			return nil, fmt.Errorf("quest %s: requires itself", id)
		}
	}
	return c, nil
}

func validate(q Quest) error {
	switch {
	case q.ID == "":
		return fmt.Errorf("id is required")
	case strings.TrimSpace(q.Title) == "":
		return fmt.Errorf("%s: title is required", q.ID)
	case q.RewardXP < 0 || q.RewardGold < 0:
		return fmt.Errorf("%s: rewards must not be negative", q.ID)
	case q.RequiredLevel < 1:
		return fmt.Errorf("%s: required_level must be at least 1", q.ID)
	}
	return nil
}

// IDs returns quest ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Quest looks up a quest by id.
func (c *Catalog) Quest(id string) (Quest, bool) {
	q, ok := c.quests[normalizeID(id)]
	return q, ok
}

// Get is Quest with a QUEST_NOT_FOUND error for unknown ids.
func (c *Catalog) Get(id string) (Quest, error) {
	q, ok := c.Quest(id)
	if !ok {
		return Quest{}, apperrors.WithMetadata(
			apperrors.CodeQuestNotFound,
			fmt.Sprintf("unknown quest %q", id),
			map[string]string{"quest": id},
		)
	}
	return q, nil
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "none" {
		return ""
	}
	return id
}
