package storage

import (
	"context"
	"time"

	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// CharacterStore persists player characters between encounters.
type CharacterStore interface {
	Load(ctx context.Context, name string) (*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// BattleRecord is one finished battle.
type BattleRecord struct {
	ID         string
	Character  string
	Class      combat.Class
	Enemy      string
	Outcome    combat.Outcome
	Turns      int
	XPGained   int
	GoldGained int
	// Seed replays the battle's rolls when the same choices are made.
	Seed      int64
	StartedAt time.Time
	EndedAt   time.Time
}

// BattleStats aggregates a character's battle outcomes.
type BattleStats struct {
	Wins    int
	Losses  int
	Escapes int
	Draws   int
}

// Total returns the number of recorded battles.
func (s BattleStats) Total() int {
	return s.Wins + s.Losses + s.Escapes + s.Draws
}

// BattleJournal records finished battles.
type BattleJournal interface {
	RecordBattle(ctx context.Context, record BattleRecord) error
	GetBattle(ctx context.Context, id string) (BattleRecord, error)
	ListBattles(ctx context.Context, characterName string, limit int) ([]BattleRecord, error)
	Stats(ctx context.Context, characterName string) (BattleStats, error)
}
