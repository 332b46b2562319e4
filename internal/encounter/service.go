// Package encounter runs one battle end to end: load the character, pick an
// enemy, fight, grant rewards, save, and journal the result.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/game/enemy"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"github.com/louisbranch/quest-chronicles/internal/platform/id"
	"github.com/louisbranch/quest-chronicles/internal/random"
	"github.com/louisbranch/quest-chronicles/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/quest-chronicles/internal/encounter"

// Service orchestrates encounters.
type Service struct {
	characters storage.CharacterStore
	journal    storage.BattleJournal
	enemies    *enemy.Catalog
	tracer     trace.Tracer
	now        func() time.Time
	maxTurns   int
	cooldown   int
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every finished battle.
func WithJournal(journal storage.BattleJournal) Option {
	return func(s *Service) { s.journal = journal }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMaxTurns sets the battle turn cap; zero removes it.
func WithMaxTurns(turns int) Option {
	return func(s *Service) { s.maxTurns = turns }
}

// WithAbilityCooldown sets the class ability cooldown in turns.
func WithAbilityCooldown(turns int) Option {
	return func(s *Service) { s.cooldown = turns }
}

// WithClock overrides time.Now for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a service. characters and enemies are required.
func NewService(characters storage.CharacterStore, enemies *enemy.Catalog, opts ...Option) (*Service, error) {
	if characters == nil {
		return nil, errors.New("character store is required")
	}
	if enemies == nil {
		return nil, errors.New("enemy catalog is required")
	}
	s := &Service{
		characters: characters,
		enemies:    enemies,
		tracer:     otel.Tracer(instrumentationName),
		now:        time.Now,
		maxTurns:   combat.DefaultMaxTurns,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Request describes one fight.
type Request struct {
	Character string
	// Class creates the character when no save exists. Leave unspecified to
	// require an existing save.
	Class combat.Class
	// Enemy is an enemy tag; empty picks one for the character's level.
	Enemy string
	// Seed replays a previous battle; zero draws a fresh one.
	Seed int64
	// Revive brings a defeated character back at half health before the
	// battle. Without it a defeated character cannot fight.
	Revive   bool
	Decider  combat.Decider
	Observer combat.Observer
	// OnStart is called once both sides are ready, before the first turn.
	OnStart func(c *character.Character, foe *combat.Combatant, created bool)
	// OnRevive is called when Revive brought the character back.
	OnRevive func(c *character.Character)
}

// Summary reports what a fight did.
type Summary struct {
	Character *character.Character
	Created   bool
	Revived   bool
	Enemy     combat.Combatant
	Result    combat.Result
	Progress  character.Progress
	Record    storage.BattleRecord
}

// Fight runs a complete encounter. The character is only saved once the
// battle has ended.
func (s *Service) Fight(ctx context.Context, req Request) (summary Summary, err error) {
	name := strings.TrimSpace(req.Character)
	ctx, span := s.tracer.Start(ctx, "encounter.Fight", trace.WithAttributes(
		attribute.String("character.name", name),
		attribute.String("enemy.tag", req.Enemy),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
		}
		span.End()
	}()

	if req.Decider == nil {
		return Summary{}, errors.New("decider is required")
	}

	c, created, err := s.loadOrCreate(ctx, name, req.Class)
	if err != nil {
		return Summary{}, err
	}
	revived := req.Revive && c.Revive()
	if revived && req.OnRevive != nil {
		req.OnRevive(c)
	}
	foe, err := s.pickEnemy(req.Enemy, c.Level)
	if err != nil {
		return Summary{}, err
	}
	seed, err := random.ResolveSeed(req.Seed)
	if err != nil {
		return Summary{}, err
	}
	span.SetAttributes(
		attribute.String("character.class", c.Class.String()),
		attribute.Int("character.level", c.Level),
		attribute.String("enemy.name", foe.Name),
		attribute.Int64("battle.seed", seed),
		attribute.Bool("character.revived", revived),
	)

	battle, err := combat.New(&c.Combatant, foe,
		combat.WithSeed(seed),
		combat.WithMaxTurns(s.maxTurns),
		combat.WithAbilityCooldown(s.cooldown),
		combat.WithObserver(req.Observer),
	)
	if err != nil {
		return Summary{}, fmt.Errorf("start battle: %w", err)
	}
	if req.OnStart != nil {
		req.OnStart(c, foe, created)
	}

	startedAt := s.now()
	result, err := battle.Run(ctx, req.Decider)
	if err != nil {
		return Summary{}, fmt.Errorf("run battle: %w", err)
	}
	endedAt := s.now()

	progress, err := c.ApplyResult(result)
	if err != nil {
		return Summary{}, fmt.Errorf("apply result: %w", err)
	}
	if err := s.characters.Save(ctx, c); err != nil {
		return Summary{}, fmt.Errorf("save character: %w", err)
	}

	battleID, err := id.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("generate battle id: %w", err)
	}
	record := storage.BattleRecord{
		ID:         battleID,
		Character:  c.Name,
		Class:      c.Class,
		Enemy:      foe.Name,
		Outcome:    result.Winner,
		Turns:      result.Turns,
		XPGained:   result.XPGained,
		GoldGained: result.GoldGained,
		Seed:       seed,
		StartedAt:  startedAt,
		EndedAt:    endedAt,
	}
	if s.journal != nil {
		if err := s.journal.RecordBattle(ctx, record); err != nil {
			return Summary{}, fmt.Errorf("record battle: %w", err)
		}
	}

	span.SetAttributes(
		attribute.String("battle.id", record.ID),
		attribute.String("battle.outcome", result.Winner.String()),
		attribute.Int("battle.turns", result.Turns),
		attribute.Int("battle.xp_gained", result.XPGained),
		attribute.Int("battle.gold_gained", result.GoldGained),
		attribute.Int("character.levels_gained", progress.LevelsGained),
	)

	return Summary{
		Character: c,
		Created:   created,
		Revived:   revived,
		Enemy:     *foe,
		Result:    result,
		Progress:  progress,
		Record:    record,
	}, nil
}

func (s *Service) loadOrCreate(ctx context.Context, name string, class combat.Class) (*character.Character, bool, error) {
	c, err := s.characters.Load(ctx, name)
	if err == nil {
		return c, false, nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeCharacterNotFound || class == combat.ClassUnspecified {
		return nil, false, fmt.Errorf("load character: %w", err)
	}
	c, err = character.New(name, class)
	if err != nil {
		return nil, false, fmt.Errorf("create character: %w", err)
	}
	return c, true, nil
}

func (s *Service) pickEnemy(tag string, level int) (*combat.Combatant, error) {
	if strings.TrimSpace(tag) != "" {
		return s.enemies.Create(tag)
	}
	return s.enemies.ForLevel(level)
}
