package combat

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// Class selects the player's special ability.
type Class int

const (
	ClassUnspecified Class = iota
	ClassWarrior
	ClassMage
	ClassRogue
	ClassCleric
)

var classNames = map[Class]string{
	ClassWarrior: "Warrior",
	ClassMage:    "Mage",
	ClassRogue:   "Rogue",
	ClassCleric:  "Cleric",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "Unspecified"
}

// Classes returns the playable classes in menu order.
func Classes() []Class {
	return []Class{ClassWarrior, ClassMage, ClassRogue, ClassCleric}
}

// ParseClass resolves a class tag case-insensitively.
func ParseClass(value string) (Class, error) {
	trimmed := strings.TrimSpace(value)
	for _, c := range Classes() {
		if strings.EqualFold(classNames[c], trimmed) {
			return c, nil
		}
	}
	return ClassUnspecified, apperrors.WithMetadata(
		apperrors.CodeInvalidCharacterClass,
		fmt.Sprintf("invalid character class %q", trimmed),
		map[string]string{"class": trimmed},
	)
}

// Rewards are granted to the player for defeating an enemy.
type Rewards struct {
	XP   int
	Gold int
}

// Combatant is one side of a battle.
type Combatant struct {
	Name      string
	Class     Class
	Health    int
	MaxHealth int
	Strength  int
	Magic     int
	// Rewards is only meaningful on the enemy side.
	Rewards Rewards
}

// Defeated reports whether the combatant has no health left.
func (c *Combatant) Defeated() bool {
	return c.Health <= 0
}

// ApplyDamage removes up to amount health and returns how much was removed.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.Health -= amount
	c.clamp()
	return max(0, before-c.Health)
}

// Heal restores up to amount health without exceeding MaxHealth and returns
// how much was restored.
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.Health += amount
	c.clamp()
	return max(0, c.Health-before)
}

func (c *Combatant) clamp() {
	if c.MaxHealth < 0 {
		c.MaxHealth = 0
	}
	if c.Health < 0 {
		c.Health = 0
	}
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}
