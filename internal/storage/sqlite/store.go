// Package sqlite provides a SQLite-backed battle journal.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/platform/id"
	sqlitemigrate "github.com/louisbranch/quest-chronicles/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/quest-chronicles/internal/storage"
	"github.com/louisbranch/quest-chronicles/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DefaultListLimit bounds ListBattles when no limit is given.
const DefaultListLimit = 20

// ErrAlreadyExists is returned when a battle ID is recorded twice.
var ErrAlreadyExists = errors.New("battle already recorded")

// Store persists the battle journal in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite journal and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordBattle inserts one finished battle. Missing IDs and timestamps are
// filled in.
func (s *Store) RecordBattle(ctx context.Context, record storage.BattleRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name := strings.TrimSpace(record.Character)
	enemy := strings.TrimSpace(record.Enemy)
	if name == "" {
		return fmt.Errorf("character name is required")
	}
	if enemy == "" {
		return fmt.Errorf("enemy is required")
	}
	if record.Outcome == combat.OutcomeNone {
		return fmt.Errorf("outcome is required")
	}
	if record.Turns < 0 {
		return fmt.Errorf("turns must not be negative")
	}
	if strings.TrimSpace(record.ID) == "" {
		battleID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate battle id: %w", err)
		}
		record.ID = battleID
	}
	endedAt := record.EndedAt.UTC()
	if endedAt.IsZero() {
		endedAt = s.now().UTC()
	}
	startedAt := record.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = endedAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO battles (
		   id,
		   character_name,
		   character_class,
		   enemy,
		   outcome,
		   turns,
		   xp_gained,
		   gold_gained,
		   seed,
		   started_at,
		   ended_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		name,
		record.Class.String(),
		enemy,
		record.Outcome.String(),
		record.Turns,
		record.XPGained,
		record.GoldGained,
		record.Seed,
		toMillis(startedAt),
		toMillis(endedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("record battle: %w", err)
	}
	return nil
}

const battleColumns = `id, character_name, character_class, enemy, outcome,
		        turns, xp_gained, gold_gained, seed, started_at, ended_at`

// GetBattle returns one battle by ID.
func (s *Store) GetBattle(ctx context.Context, battleID string) (storage.BattleRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattleRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BattleRecord{}, fmt.Errorf("storage is not configured")
	}
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return storage.BattleRecord{}, fmt.Errorf("battle id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+battleColumns+`
		   FROM battles
		  WHERE id = ?`,
		battleID,
	)
	record, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BattleRecord{}, storage.ErrNotFound
		}
		return storage.BattleRecord{}, fmt.Errorf("get battle: %w", err)
	}
	return record, nil
}

// ListBattles returns a character's most recent battles, newest first.
func (s *Store) ListBattles(ctx context.Context, characterName string, limit int) ([]storage.BattleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	characterName = strings.TrimSpace(characterName)
	if characterName == "" {
		return nil, fmt.Errorf("character name is required")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+battleColumns+`
		   FROM battles
		  WHERE character_name = ?
		  ORDER BY ended_at DESC, id DESC
		  LIMIT ?`,
		characterName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	records := make([]storage.BattleRecord, 0, limit)
	for rows.Next() {
		record, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("list battles: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	return records, nil
}

// Stats counts a character's battles by outcome.
func (s *Store) Stats(ctx context.Context, characterName string) (storage.BattleStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattleStats{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BattleStats{}, fmt.Errorf("storage is not configured")
	}
	characterName = strings.TrimSpace(characterName)
	if characterName == "" {
		return storage.BattleStats{}, fmt.Errorf("character name is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT outcome, COUNT(*)
		   FROM battles
		  WHERE character_name = ?
		  GROUP BY outcome`,
		characterName,
	)
	if err != nil {
		return storage.BattleStats{}, fmt.Errorf("battle stats: %w", err)
	}
	defer rows.Close()

	var stats storage.BattleStats
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return storage.BattleStats{}, fmt.Errorf("battle stats: %w", err)
		}
		parsed, err := combat.ParseOutcome(outcome)
		if err != nil {
			return storage.BattleStats{}, fmt.Errorf("battle stats: %w", err)
		}
		switch parsed {
		case combat.OutcomePlayer:
			stats.Wins += count
		case combat.OutcomeEnemy:
			stats.Losses += count
		case combat.OutcomeEscaped:
			stats.Escapes += count
		case combat.OutcomeDraw:
			stats.Draws += count
		}
	}
	if err := rows.Err(); err != nil {
		return storage.BattleStats{}, fmt.Errorf("battle stats: %w", err)
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBattle(row scanner) (storage.BattleRecord, error) {
	var (
		record    storage.BattleRecord
		class     string
		outcome   string
		startedAt int64
		endedAt   int64
	)
	if err := row.Scan(
		&record.ID,
		&record.Character,
		&class,
		&record.Enemy,
		&outcome,
		&record.Turns,
		&record.XPGained,
		&record.GoldGained,
		&record.Seed,
		&startedAt,
		&endedAt,
	); err != nil {
		return storage.BattleRecord{}, err
	}
	parsedOutcome, err := combat.ParseOutcome(outcome)
	if err != nil {
		return storage.BattleRecord{}, err
	}
	// A class the player never picked is stored as "Unspecified".
	parsedClass, _ := combat.ParseClass(class)
	record.Class = parsedClass
	record.Outcome = parsedOutcome
	record.StartedAt = fromMillis(startedAt)
	record.EndedAt = fromMillis(endedAt)
	return record, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "battles.id")
}

var _ storage.BattleJournal = (*Store)(nil)
