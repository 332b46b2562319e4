package combat

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

var (
	// ErrCharacterDead is returned when a defeated player starts or continues a battle.
	ErrCharacterDead = apperrors.New(apperrors.CodeCharacterDead, "character is already defeated")
	// ErrCombatNotActive is returned when a turn is taken after the battle ended.
	ErrCombatNotActive = apperrors.New(apperrors.CodeCombatNotActive, "combat is not active")
	// ErrAbilityOnCooldown is returned when the class ability is still recharging.
	ErrAbilityOnCooldown = apperrors.New(apperrors.CodeAbilityOnCooldown, "ability is on cooldown")
	// ErrInvalidAction is returned for an action outside the player menu.
	ErrInvalidAction = apperrors.New(apperrors.CodeInvalidAction, "invalid action")
	// ErrInvalidClass is returned when a class tag is not recognized.
	ErrInvalidClass = apperrors.New(apperrors.CodeInvalidCharacterClass, "invalid character class")
)

func characterDead(c *Combatant) error {
	return apperrors.WithMetadata(
		apperrors.CodeCharacterDead,
		fmt.Sprintf("%s is already defeated", c.Name),
		map[string]string{"name": c.Name},
	)
}

func combatNotActive(side Side) error {
	return apperrors.WithMetadata(
		apperrors.CodeCombatNotActive,
		fmt.Sprintf("%s turn taken outside battle", side),
		map[string]string{"side": side.String()},
	)
}

func abilityOnCooldown(ability Ability, remaining int) error {
	return apperrors.WithMetadata(
		apperrors.CodeAbilityOnCooldown,
		fmt.Sprintf("%s is on cooldown for %d more turn(s)", ability.Name, remaining),
		map[string]string{"ability": ability.Key, "remaining": strconv.Itoa(remaining)},
	)
}

func invalidAction(action Action) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidAction,
		fmt.Sprintf("invalid action %d", int(action)),
		map[string]string{"action": strconv.Itoa(int(action))},
	)
}
