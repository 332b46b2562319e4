// Package dice implements the seeded rolls behind combat chances.
package dice

import "math/rand"

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Percentile rolls a single d100.
func Percentile(src Source) int {
	return rollDie(src, 100)
}

// Chance rolls a d100 and succeeds with the given percent probability.
// Percentages are clamped to [0, 100]; 0 never succeeds and 100 always does.
func Chance(src Source, percent int) bool {
	return Percentile(src) >= PercentDifficulty(percent)
}

// PercentDifficulty returns the lowest d100 roll that succeeds with the
// given percent chance.
func PercentDifficulty(percent int) int {
	return 101 - min(max(percent, 0), 100)
}

func rollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}
