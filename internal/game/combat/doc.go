// Package combat implements turn-based encounters between a player character
// and a single enemy.
//
// The package is made of three layers:
//
//   - Combatant records and the pure damage model (Damage).
//   - The class ability table (ResolveAbility), keyed by Class.
//   - The Battle state machine, which sequences player and enemy turns,
//     applies the rules above, and produces a Result once the encounter ends.
//
// A Battle exclusively mutates the two Combatant records it was created with
// for as long as it is active. All health changes are clamped into
// [0, MaxHealth].
package combat
