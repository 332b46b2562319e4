// Package town runs the between-battle errands a character can do: the shop,
// equipment, consumables, the quest board, and retiring a save.
// Each errand loads the character, applies one change, and saves it.
package town

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/item"
	"github.com/louisbranch/quest-chronicles/internal/game/quest"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"github.com/louisbranch/quest-chronicles/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/quest-chronicles/internal/town"

// Service applies errands to saved characters.
type Service struct {
	characters storage.CharacterStore
	items      *item.Catalog
	quests     *quest.Catalog
	tracer     trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// NewService builds a service. All arguments are required.
func NewService(characters storage.CharacterStore, items *item.Catalog, quests *quest.Catalog, opts ...Option) (*Service, error) {
	if characters == nil {
		return nil, errors.New("character store is required")
	}
	if items == nil {
		return nil, errors.New("item catalog is required")
	}
	if quests == nil {
		return nil, errors.New("quest catalog is required")
	}
	s := &Service{
		characters: characters,
		items:      items,
		quests:     quests,
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Items exposes the item catalog for shop listings.
func (s *Service) Items() *item.Catalog { return s.items }

// Quests exposes the quest catalog for the quest board.
func (s *Service) Quests() *quest.Catalog { return s.quests }

// Character loads a character without changing it.
func (s *Service) Character(ctx context.Context, name string) (*character.Character, error) {
	c, err := s.characters.Load(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("load character: %w", err)
	}
	return c, nil
}

// Buy purchases an item from the shop.
func (s *Service) Buy(ctx context.Context, name, itemID string) (*character.Character, item.Item, error) {
	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, item.Item{}, err
	}
	c, err := s.errand(ctx, "town.Buy", name, itemAttrs(it), func(c *character.Character) (bool, error) {
		return true, c.Purchase(it)
	})
	return c, it, err
}

// Sell sells one copy of an item and returns the gold received.
func (s *Service) Sell(ctx context.Context, name, itemID string) (*character.Character, int, error) {
	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, 0, err
	}
	var price int
	c, err := s.errand(ctx, "town.Sell", name, itemAttrs(it), func(c *character.Character) (bool, error) {
		var sellErr error
		price, sellErr = c.Sell(it)
		return true, sellErr
	})
	return c, price, err
}

// Equip wears a weapon or armor and returns the id it replaced, if any.
func (s *Service) Equip(ctx context.Context, name, itemID string) (*character.Character, string, error) {
	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, "", err
	}
	var previous string
	c, err := s.errand(ctx, "town.Equip", name, itemAttrs(it), func(c *character.Character) (bool, error) {
		var equipErr error
		previous, equipErr = c.Equip(it, s.items)
		return true, equipErr
	})
	return c, previous, err
}

// Unequip empties a slot ("weapon" or "armor") and returns the removed id.
func (s *Service) Unequip(ctx context.Context, name, slot string) (*character.Character, string, error) {
	t, err := item.ParseType(slot)
	if err != nil {
		return nil, "", err
	}
	var removed string
	c, err := s.errand(ctx, "town.Unequip", name, []attribute.KeyValue{attribute.String("item.slot", string(t))},
		func(c *character.Character) (bool, error) {
			var unequipErr error
			removed, unequipErr = c.Unequip(t, s.items)
			return removed != "", unequipErr
		})
	return c, removed, err
}

// Use consumes an item.
func (s *Service) Use(ctx context.Context, name, itemID string) (*character.Character, item.Item, error) {
	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, item.Item{}, err
	}
	c, err := s.errand(ctx, "town.Use", name, itemAttrs(it), func(c *character.Character) (bool, error) {
		return true, c.UseItem(it)
	})
	return c, it, err
}

// AcceptQuest takes a quest from the board.
func (s *Service) AcceptQuest(ctx context.Context, name, questID string) (*character.Character, quest.Quest, error) {
	q, err := s.quests.Get(questID)
	if err != nil {
		return nil, quest.Quest{}, err
	}
	c, err := s.errand(ctx, "town.AcceptQuest", name, questAttrs(q), func(c *character.Character) (bool, error) {
		return true, c.AcceptQuest(q)
	})
	return c, q, err
}

// CompleteQuest turns in an active quest for its rewards.
func (s *Service) CompleteQuest(ctx context.Context, name, questID string) (*character.Character, character.Progress, error) {
	q, err := s.quests.Get(questID)
	if err != nil {
		return nil, character.Progress{}, err
	}
	var progress character.Progress
	c, err := s.errand(ctx, "town.CompleteQuest", name, questAttrs(q), func(c *character.Character) (bool, error) {
		var questErr error
		progress, questErr = c.CompleteQuest(q)
		return true, questErr
	})
	return c, progress, err
}

// AbandonQuest drops an active quest.
func (s *Service) AbandonQuest(ctx context.Context, name, questID string) (*character.Character, quest.Quest, error) {
	q, err := s.quests.Get(questID)
	if err != nil {
		return nil, quest.Quest{}, err
	}
	c, err := s.errand(ctx, "town.AbandonQuest", name, questAttrs(q), func(c *character.Character) (bool, error) {
		return true, c.AbandonQuest(q.ID)
	})
	return c, q, err
}

// Available lists the quests c can accept now, in board order.
func (s *Service) Available(c *character.Character) []quest.Quest {
	var out []quest.Quest
	for _, id := range s.quests.IDs() {
		q, _ := s.quests.Quest(id)
		if c.CanAcceptQuest(q) {
			out = append(out, q)
		}
	}
	return out
}

// Delete removes a character's save.
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	name = strings.TrimSpace(name)
	ctx, span := s.tracer.Start(ctx, "town.Delete", trace.WithAttributes(attribute.String("character.name", name)))
	defer func() { end(span, err) }()

	if err := s.characters.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return nil
}

// errand loads name, applies fn and saves the result when fn reports a
// change. Nothing is saved when fn fails.
func (s *Service) errand(ctx context.Context, op, name string, attrs []attribute.KeyValue, fn func(*character.Character) (bool, error)) (c *character.Character, err error) {
	name = strings.TrimSpace(name)
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		append([]attribute.KeyValue{attribute.String("character.name", name)}, attrs...)...,
	))
	defer func() { end(span, err) }()

	c, err = s.characters.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load character: %w", err)
	}
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("character.changed", changed), attribute.Int("character.gold", c.Gold))
	if !changed {
		return c, nil
	}
	if err := s.characters.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save character: %w", err)
	}
	return c, nil
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
	}
	span.End()
}

func itemAttrs(it item.Item) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("item.id", it.ID), attribute.String("item.type", string(it.Type))}
}

func questAttrs(q quest.Quest) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("quest.id", q.ID)}
}
