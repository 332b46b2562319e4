package combat

import "github.com/louisbranch/quest-chronicles/internal/core/dice"

const (
	clericHealAmount = 30
	rogueCritChance  = 50
)

// EffectKind classifies what an action did.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectDamage
	EffectHeal
	EffectMiss
)

// Effect is the outcome of one action. Amount is the computed damage or the
// health actually restored.
type Effect struct {
	Kind    EffectKind
	Ability string
	Amount  int
}

// Ability is a class special action.
type Ability struct {
	// Key identifies the ability in catalogs and persisted data.
	Key  string
	Name string

	resolve func(user, target *Combatant, src dice.Source) Effect
}

var abilities = map[Class]Ability{
	ClassWarrior: {Key: "power_strike", Name: "Power Strike", resolve: powerStrike},
	ClassMage:    {Key: "fireball", Name: "Fireball", resolve: fireball},
	ClassRogue:   {Key: "critical_strike", Name: "Critical Strike", resolve: criticalStrike},
	ClassCleric:  {Key: "heal", Name: "Heal", resolve: heal},
}

// AbilityFor returns the ability of class c.
func AbilityFor(c Class) (Ability, bool) {
	a, ok := abilities[c]
	return a, ok
}

// ResolveAbility applies the user's class ability. Unknown classes do nothing.
func ResolveAbility(user, target *Combatant, src dice.Source) Effect {
	ability, ok := abilities[user.Class]
	if !ok || ability.resolve == nil {
		return Effect{Kind: EffectNone}
	}
	effect := ability.resolve(user, target, src)
	effect.Ability = ability.Key
	return effect
}

func powerStrike(user, target *Combatant, _ dice.Source) Effect {
	damage := scaledDamage(user.Strength*2, target.Strength)
	target.ApplyDamage(damage)
	return Effect{Kind: EffectDamage, Amount: damage}
}

func fireball(user, target *Combatant, _ dice.Source) Effect {
	damage := scaledDamage(user.Magic*2, target.Magic)
	target.ApplyDamage(damage)
	return Effect{Kind: EffectDamage, Amount: damage}
}

func criticalStrike(user, target *Combatant, src dice.Source) Effect {
	if !dice.Chance(src, rogueCritChance) {
		return Effect{Kind: EffectMiss}
	}
	damage := scaledDamage(user.Strength*3, target.Strength)
	target.ApplyDamage(damage)
	return Effect{Kind: EffectDamage, Amount: damage}
}

func heal(user, _ *Combatant, _ dice.Source) Effect {
	return Effect{Kind: EffectHeal, Amount: user.Heal(clericHealAmount)}
}
