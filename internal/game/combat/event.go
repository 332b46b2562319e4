package combat

import apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"

// EventKind identifies a narrated battle occurrence.
type EventKind int

const (
	EventBattleStarted EventKind = iota + 1
	EventAttack
	EventAbility
	EventAbilityMissed
	EventHeal
	EventEscaped
	EventEscapeFailed
	EventDefeated
	EventDraw
	EventRejected
)

// Event is emitted to the observer for every action and state change.
type Event struct {
	Kind    EventKind
	Turn    int
	Actor   string
	Target  string
	Ability string
	Amount  int
	// Code is set on EventRejected.
	Code apperrors.Code
}

// Observer receives battle events as they happen.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }
