// Package character models a persistent player character and its
// progression between battles.
package character

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

const (
	startingLevel  = 1
	startingGold   = 100
	startingHealth = 100

	levelUpHealth   = 10
	levelUpStrength = 2
	levelUpMagic    = 2
	xpPerLevel      = 100
)

var (
	// ErrEmptyName is returned when a character has no name.
	ErrEmptyName = apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	// ErrInsufficientGold is returned when spending would leave a negative balance.
	ErrInsufficientGold = apperrors.New(apperrors.CodeInsufficientGold, "insufficient gold")
	// ErrInvalidData is returned when a character record fails validation.
	ErrInvalidData = apperrors.New(apperrors.CodeInvalidSaveData, "invalid character data")
)

type baseStats struct {
	strength int
	magic    int
}

var classStats = map[combat.Class]baseStats{
	combat.ClassWarrior: {strength: 15, magic: 5},
	combat.ClassMage:    {strength: 5, magic: 15},
	combat.ClassRogue:   {strength: 10, magic: 10},
	combat.ClassCleric:  {strength: 5, magic: 5},
}

// Character is a saved player character. The embedded Combatant is the
// record handed to battles.
type Character struct {
	combat.Combatant

	Level           int
	Experience      int
	Gold            int
	Inventory       []string
	ActiveQuests    []string
	CompletedQuests []string
	EquippedWeapon  string
	EquippedArmor   string
}

// ValidateName rejects blank names and names with control characters, which
// would break the line-oriented save format.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidCharacterName,
			fmt.Sprintf("character name %q contains control characters", name),
			map[string]string{"name": name},
		)
	}
	return nil
}

// New creates a level one character with the class's base stats.
func New(name string, class combat.Class) (*Character, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	stats, ok := classStats[class]
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeInvalidCharacterClass,
			fmt.Sprintf("invalid character class %q", class),
			map[string]string{"class": class.String()},
		)
	}
	return &Character{
		Combatant: combat.Combatant{
			Name:      name,
			Class:     class,
			Health:    startingHealth,
			MaxHealth: startingHealth,
			Strength:  stats.strength,
			Magic:     stats.magic,
		},
		Level:           startingLevel,
		Gold:            startingGold,
		Inventory:       []string{},
		ActiveQuests:    []string{},
		CompletedQuests: []string{},
	}, nil
}

// XPToNextLevel is the experience required to leave the current level.
func (c *Character) XPToNextLevel() int {
	return c.Level * xpPerLevel
}

// GainExperience adds xp and applies every level up it pays for. It returns
// the number of levels gained. A defeated character cannot gain experience.
func (c *Character) GainExperience(xp int) (int, error) {
	if c.Defeated() {
		return 0, apperrors.WithMetadata(
			apperrors.CodeCharacterDead,
			fmt.Sprintf("%s cannot gain experience while defeated", c.Name),
			map[string]string{"name": c.Name},
		)
	}
	if xp <= 0 {
		return 0, nil
	}
	c.Experience += xp
	levels := 0
	for c.Experience >= c.XPToNextLevel() {
		c.Experience -= c.XPToNextLevel()
		c.Level++
		c.MaxHealth += levelUpHealth
		c.Strength += levelUpStrength
		c.Magic += levelUpMagic
		c.Health = c.MaxHealth
		levels++
	}
	return levels, nil
}

// AddGold changes the balance by amount, which may be negative. The balance
// is left untouched when it would go below zero.
func (c *Character) AddGold(amount int) (int, error) {
	next := c.Gold + amount
	if next < 0 {
		return c.Gold, apperrors.WithMetadata(
			apperrors.CodeInsufficientGold,
			fmt.Sprintf("%s has %d gold, needs %d", c.Name, c.Gold, -amount),
			map[string]string{"name": c.Name},
		)
	}
	c.Gold = next
	return c.Gold, nil
}

// Revive restores a defeated character to half health. It reports whether
// the character was revived.
func (c *Character) Revive() bool {
	if !c.Defeated() {
		return false
	}
	c.Health = c.MaxHealth / 2
	if c.Health == 0 && c.MaxHealth > 0 {
		c.Health = 1
	}
	return true
}

// Progress reports what ApplyResult changed.
type Progress struct {
	XPGained     int
	GoldGained   int
	LevelsGained int
}

// ApplyResult grants the rewards of a finished battle.
func (c *Character) ApplyResult(result combat.Result) (Progress, error) {
	if result.Winner != combat.OutcomePlayer {
		return Progress{}, nil
	}
	levels, err := c.GainExperience(result.XPGained)
	if err != nil {
		return Progress{}, err
	}
	if _, err := c.AddGold(result.GoldGained); err != nil {
		return Progress{}, err
	}
	return Progress{XPGained: result.XPGained, GoldGained: result.GoldGained, LevelsGained: levels}, nil
}

// Validate checks that a character record is internally consistent.
func (c *Character) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	} else if strings.ContainsFunc(c.Name, unicode.IsControl) {
		problems = append(problems, "name contains control characters")
	}
	if _, ok := classStats[c.Class]; !ok {
		problems = append(problems, "class is invalid")
	}
	if c.Level < 1 {
		problems = append(problems, "level must be at least 1")
	}
	if c.MaxHealth <= 0 {
		problems = append(problems, "max health must be positive")
	}
	if c.Health < 0 || c.Health > c.MaxHealth {
		problems = append(problems, "health must be within [0, max health]")
	}
	if c.Strength < 0 || c.Magic < 0 {
		problems = append(problems, "stats must not be negative")
	}
	if c.Experience < 0 {
		problems = append(problems, "experience must not be negative")
	}
	if c.Gold < 0 {
		problems = append(problems, "gold must not be negative")
	}
	if len(problems) == 0 {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeInvalidSaveData,
		fmt.Sprintf("invalid character %q: %s", c.Name, strings.Join(problems, "; ")),
		map[string]string{"name": c.Name},
	)
}
