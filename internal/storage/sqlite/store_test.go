package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestRecordGetBattleRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	started := time.Date(2026, time.March, 3, 18, 0, 0, 0, time.UTC)
	input := storage.BattleRecord{
		ID:         "battle-1",
		Character:  "Aria",
		Class:      combat.ClassWarrior,
		Enemy:      "Goblin",
		Outcome:    combat.OutcomePlayer,
		Turns:      4,
		XPGained:   25,
		GoldGained: 10,
		Seed:       -8812345,
		StartedAt:  started,
		EndedAt:    started.Add(90 * time.Second),
	}
	if err := store.RecordBattle(context.Background(), input); err != nil {
		t.Fatalf("record battle: %v", err)
	}

	got, err := store.GetBattle(context.Background(), "battle-1")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if !got.StartedAt.Equal(input.StartedAt) || !got.EndedAt.Equal(input.EndedAt) {
		t.Fatalf("timestamps = %v/%v, want %v/%v", got.StartedAt, got.EndedAt, input.StartedAt, input.EndedAt)
	}
	got.StartedAt, got.EndedAt = input.StartedAt, input.EndedAt
	if got != input {
		t.Fatalf("get battle = %+v, want %+v", got, input)
	}
}

func TestRecordBattleFillsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.April, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	err := store.RecordBattle(context.Background(), storage.BattleRecord{
		Character: "Aria",
		Class:     combat.ClassMage,
		Enemy:     "Orc",
		Outcome:   combat.OutcomeEscaped,
		Turns:     2,
	})
	if err != nil {
		t.Fatalf("record battle: %v", err)
	}
	battles, err := store.ListBattles(context.Background(), "Aria", 0)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(battles) != 1 {
		t.Fatalf("battles = %d, want 1", len(battles))
	}
	if battles[0].ID == "" {
		t.Fatal("expected generated id")
	}
	if !battles[0].EndedAt.Equal(now) || !battles[0].StartedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", battles[0].StartedAt, battles[0].EndedAt, now)
	}
}

func TestRecordBattleValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	valid := storage.BattleRecord{Character: "Aria", Enemy: "Goblin", Outcome: combat.OutcomeDraw, Turns: 100}
	tests := []struct {
		name   string
		mutate func(*storage.BattleRecord)
	}{
		{name: "missing character", mutate: func(r *storage.BattleRecord) { r.Character = " " }},
		{name: "missing enemy", mutate: func(r *storage.BattleRecord) { r.Enemy = "" }},
		{name: "missing outcome", mutate: func(r *storage.BattleRecord) { r.Outcome = combat.OutcomeNone }},
		{name: "negative turns", mutate: func(r *storage.BattleRecord) { r.Turns = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid
			tt.mutate(&record)
			if err := store.RecordBattle(context.Background(), record); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRecordBattleReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	record := storage.BattleRecord{ID: "dup", Character: "Aria", Enemy: "Goblin", Outcome: combat.OutcomeEnemy, Turns: 3}
	if err := store.RecordBattle(context.Background(), record); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := store.RecordBattle(context.Background(), record); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second record error = %v, want ErrAlreadyExists", err)
	}
}

func TestGetBattleNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetBattle(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get battle error = %v, want ErrNotFound", err)
	}
}

func TestListBattlesNewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.May, 5, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Aria", "Aria", "Vex", "Aria"} {
		err := store.RecordBattle(context.Background(), storage.BattleRecord{
			Character: name,
			Enemy:     "Goblin",
			Outcome:   combat.OutcomePlayer,
			Turns:     i + 1,
			EndedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	battles, err := store.ListBattles(context.Background(), "Aria", 2)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(battles) != 2 {
		t.Fatalf("battles = %d, want 2", len(battles))
	}
	if battles[0].Turns != 4 || battles[1].Turns != 2 {
		t.Fatalf("turn order = %d,%d, want 4,2", battles[0].Turns, battles[1].Turns)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	outcomes := []combat.Outcome{
		combat.OutcomePlayer, combat.OutcomePlayer, combat.OutcomeEnemy,
		combat.OutcomeEscaped, combat.OutcomeDraw, combat.OutcomePlayer,
	}
	for i, outcome := range outcomes {
		err := store.RecordBattle(context.Background(), storage.BattleRecord{
			Character: "Aria",
			Enemy:     "Orc",
			Outcome:   outcome,
			Turns:     i + 1,
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	stats, err := store.Stats(context.Background(), "Aria")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := storage.BattleStats{Wins: 3, Losses: 1, Escapes: 1, Draws: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	if stats.Total() != 6 {
		t.Fatalf("total = %d, want 6", stats.Total())
	}

	empty, err := store.Stats(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if empty.Total() != 0 {
		t.Fatalf("empty stats = %+v", empty)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.RecordBattle(context.Background(), storage.BattleRecord{}); err == nil {
		t.Fatal("expected not configured error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
