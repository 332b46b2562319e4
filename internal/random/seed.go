// Package random provides seed generation for replayable battles.
//
// Battles draw from a math/rand source seeded once per encounter; the seed is
// recorded with the battle so the same choices replay the same rolls.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns seed unchanged when non-zero, otherwise a fresh one.
func ResolveSeed(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}
