package combat

import (
	"context"
	"errors"
	"testing"
)

// scriptedDecider plays the given actions in order, then keeps attacking.
type scriptedDecider struct {
	actions []Action
	views   []View
}

func (d *scriptedDecider) Decide(_ context.Context, view View) (Action, error) {
	d.views = append(d.views, view)
	if len(d.actions) == 0 {
		return ActionAttack, nil
	}
	next := d.actions[0]
	d.actions = d.actions[1:]
	return next, nil
}

func TestRunWarriorVsGoblin(t *testing.T) {
	t.Parallel()

	var events []Event
	b, err := New(warrior(), goblin(), WithSeed(3), WithObserver(ObserverFunc(func(e Event) {
		events = append(events, e)
	})))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := &scriptedDecider{}
	result, err := b.Run(context.Background(), decider)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := Result{Winner: OutcomePlayer, XPGained: 25, GoldGained: 10, Turns: 4}
	if result != want {
		t.Fatalf("Run() = %+v, want %+v", result, want)
	}
	if len(decider.views) != 4 {
		t.Fatalf("decisions = %d, want 4", len(decider.views))
	}
	if decider.views[1].Enemy.Health != 37 || decider.views[1].Player.Health != 115 {
		t.Fatalf("second view = %+v", decider.views[1])
	}
	if len(events) == 0 || events[0].Kind != EventBattleStarted {
		t.Fatalf("first event = %+v, want battle started", events)
	}
	if last := events[len(events)-1]; last.Kind != EventDefeated || last.Target != "Goblin" {
		t.Fatalf("last event = %+v, want goblin defeated", last)
	}
}

func TestRunRepromptsOnCooldown(t *testing.T) {
	t.Parallel()

	var rejected []Event
	obs := ObserverFunc(func(e Event) {
		if e.Kind == EventRejected {
			rejected = append(rejected, e)
		}
	})
	b, err := New(warrior(), goblin(), WithSeed(3), WithAbilityCooldown(3), WithObserver(obs))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := &scriptedDecider{actions: []Action{ActionAbility, ActionAbility, ActionAttack}}
	result, err := b.Run(context.Background(), decider)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Winner != OutcomePlayer {
		t.Fatalf("winner = %v, want player", result.Winner)
	}
	if len(rejected) != 1 || rejected[0].Code != ErrAbilityOnCooldown.Code {
		t.Fatalf("rejections = %+v, want one cooldown rejection", rejected)
	}
	if decider.views[1].AbilityReady || decider.views[1].CooldownRemaining != 3 {
		t.Fatalf("view after ability = %+v, want cooldown 3", decider.views[1])
	}
	// 28 + 13 + 13 kills the goblin on turn three.
	if result.Turns != 3 {
		t.Fatalf("turns = %d, want 3", result.Turns)
	}
}

func TestRunGivesUpAfterRepeatedRejections(t *testing.T) {
	t.Parallel()

	b, err := New(warrior(), goblin(), WithSeed(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := DeciderFunc(func(context.Context, View) (Action, error) { return Action(9), nil })
	if _, err := b.Run(context.Background(), decider); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("Run() error = %v, want ErrInvalidAction", err)
	}
	if !b.Active() {
		t.Fatal("expected battle to stay active")
	}
}

func TestRunStopsOnDeciderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("input closed")
	b, err := New(warrior(), goblin(), WithSeed(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := DeciderFunc(func(context.Context, View) (Action, error) { return 0, boom })
	if _, err := b.Run(context.Background(), decider); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if !b.Active() || b.Turns() != 0 {
		t.Fatalf("active = %v turns = %d, want untouched battle", b.Active(), b.Turns())
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	b, err := New(warrior(), goblin(), WithSeed(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := DeciderFunc(func(context.Context, View) (Action, error) {
		cancel()
		return ActionAttack, nil
	})
	if _, err := b.Run(ctx, decider); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if b.Turns() != 1 || !b.Active() {
		t.Fatalf("turns = %d active = %v, want one turn and still active", b.Turns(), b.Active())
	}
}

func TestRunRejectsEndedBattle(t *testing.T) {
	t.Parallel()

	b, err := New(warrior(), goblin(), WithSource(alwaysHit()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.PlayerTurn(ActionEscape); err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}
	if _, err := b.Run(context.Background(), &scriptedDecider{}); !errors.Is(err, ErrCombatNotActive) {
		t.Fatalf("Run() error = %v, want ErrCombatNotActive", err)
	}
}

func TestRunEndsInDrawAtTurnCap(t *testing.T) {
	t.Parallel()

	b, err := New(warrior(), goblin(), WithSource(alwaysMiss()), WithMaxTurns(5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	decider := DeciderFunc(func(context.Context, View) (Action, error) { return ActionEscape, nil })
	result, err := b.Run(context.Background(), decider)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result != (Result{Winner: OutcomeDraw, Turns: 5}) {
		t.Fatalf("Run() = %+v, want draw after 5 turns", result)
	}
}
