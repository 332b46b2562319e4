package combat

// Damage returns the basic attack damage from attacker to defender:
// attacker strength minus a quarter of defender strength, never below 1.
func Damage(attacker, defender Combatant) int {
	return scaledDamage(attacker.Strength, defender.Strength)
}

// scaledDamage applies the shared floor rule to an arbitrary power/defense pair.
func scaledDamage(power, defense int) int {
	damage := power - defense/4
	if damage < 1 {
		return 1
	}
	return damage
}
