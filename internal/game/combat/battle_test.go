package combat

import (
	"errors"
	"testing"

	"github.com/louisbranch/quest-chronicles/internal/core/dice"
)

func warrior() *Combatant {
	return &Combatant{
		Name:      "Aria",
		Class:     ClassWarrior,
		Health:    120,
		MaxHealth: 120,
		Strength:  15,
		Magic:     5,
	}
}

func TestNewRejectsDefeatedPlayer(t *testing.T) {
	t.Parallel()

	for _, health := range []int{0, -5} {
		player := warrior()
		player.Health = health
		_, err := New(player, goblin(), WithSeed(1))
		if !errors.Is(err, ErrCharacterDead) {
			t.Fatalf("New(health=%d) error = %v, want ErrCharacterDead", health, err)
		}
	}
}

func TestNewRequiresCombatants(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, goblin()); err == nil {
		t.Fatal("expected error for nil player")
	}
	if _, err := New(warrior(), nil); err == nil {
		t.Fatal("expected error for nil enemy")
	}
}

func TestWarriorDefeatsGoblinWithBasicAttacks(t *testing.T) {
	t.Parallel()

	player := warrior()
	enemy := goblin()
	b, err := New(player, enemy, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	playerTurns := 0
	for b.Active() {
		turn, err := b.PlayerTurn(ActionAttack)
		if err != nil {
			t.Fatalf("PlayerTurn() error = %v", err)
		}
		playerTurns++
		if turn.Effect.Amount != 13 {
			t.Fatalf("attack damage = %d, want 13", turn.Effect.Amount)
		}
		if turn.Ended {
			break
		}
		if _, err := b.EnemyTurn(); err != nil {
			t.Fatalf("EnemyTurn() error = %v", err)
		}
	}

	if playerTurns != 4 {
		t.Fatalf("player turns = %d, want 4", playerTurns)
	}
	if got := b.CheckEnd(); got != OutcomePlayer {
		t.Fatalf("CheckEnd() = %v, want player", got)
	}
	result, ok := b.Result()
	if !ok {
		t.Fatal("expected result after battle ended")
	}
	want := Result{Winner: OutcomePlayer, XPGained: 25, GoldGained: 10, Turns: 4}
	if result != want {
		t.Fatalf("Result() = %+v, want %+v", result, want)
	}
	if enemy.Health != 0 {
		t.Fatalf("goblin health = %d, want 0", enemy.Health)
	}
	// Three goblin attacks of 5 damage each.
	if player.Health != 105 {
		t.Fatalf("player health = %d, want 105", player.Health)
	}
}

func TestWarriorPowerStrikeDamage(t *testing.T) {
	t.Parallel()

	enemy := goblin()
	b, err := New(warrior(), enemy, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	turn, err := b.PlayerTurn(ActionAbility)
	if err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}
	if turn.Effect.Kind != EffectDamage || turn.Effect.Amount != 28 {
		t.Fatalf("effect = %+v, want 28 damage", turn.Effect)
	}
	if enemy.Health != 22 {
		t.Fatalf("enemy health = %d, want 22", enemy.Health)
	}
}

func TestEnemyVictoryClampsAndGrantsNothing(t *testing.T) {
	t.Parallel()

	player := warrior()
	player.Health = 3
	enemy := &Combatant{Name: "Dragon", Health: 200, MaxHealth: 200, Strength: 25, Rewards: Rewards{XP: 200, Gold: 100}}
	b, err := New(player, enemy, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.PlayerTurn(ActionAttack); err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}
	turn, err := b.EnemyTurn()
	if err != nil {
		t.Fatalf("EnemyTurn() error = %v", err)
	}
	if !turn.Ended || b.Active() {
		t.Fatal("expected battle to end")
	}
	if player.Health != 0 {
		t.Fatalf("player health = %d, want 0", player.Health)
	}
	result, _ := b.Result()
	if result.Winner != OutcomeEnemy || result.XPGained != 0 || result.GoldGained != 0 {
		t.Fatalf("Result() = %+v, want enemy win with no rewards", result)
	}
	if got := b.CheckEnd(); got != OutcomeEnemy {
		t.Fatalf("CheckEnd() = %v, want enemy", got)
	}
}

func TestEscapeEndsBattleWithoutRewards(t *testing.T) {
	t.Parallel()

	enemy := goblin()
	b, err := New(warrior(), enemy, WithSource(alwaysHit()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	turn, err := b.PlayerTurn(ActionEscape)
	if err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}
	if !turn.Escaped || !turn.Ended {
		t.Fatalf("turn = %+v, want escaped and ended", turn)
	}
	result, ok := b.Result()
	if !ok {
		t.Fatal("expected result")
	}
	if result != (Result{Winner: OutcomeEscaped, Turns: 1}) {
		t.Fatalf("Result() = %+v, want escape with no rewards", result)
	}
	if enemy.Health != enemy.MaxHealth {
		t.Fatalf("escape damaged enemy: %d", enemy.Health)
	}
}

func TestEscapeRateConvergesToHalf(t *testing.T) {
	t.Parallel()

	const trials = 20000
	src := dice.NewSource(2024)
	escaped := 0
	for i := 0; i < trials; i++ {
		b, err := New(warrior(), goblin(), WithSource(src))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		turn, err := b.PlayerTurn(ActionEscape)
		if err != nil {
			t.Fatalf("PlayerTurn() error = %v", err)
		}
		if turn.Escaped {
			escaped++
		}
	}

	rate := float64(escaped) / trials
	if rate < 0.47 || rate > 0.53 {
		t.Fatalf("escape rate = %.3f, want about 0.5", rate)
	}
}

func TestTurnsAfterEndFailWithoutChangingStats(t *testing.T) {
	t.Parallel()

	player := warrior()
	enemy := goblin()
	b, err := New(player, enemy, WithSource(alwaysHit()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.PlayerTurn(ActionEscape); err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}

	playerBefore, enemyBefore := *player, *enemy
	for _, action := range []Action{ActionAttack, ActionAbility, ActionEscape} {
		if _, err := b.PlayerTurn(action); !errors.Is(err, ErrCombatNotActive) {
			t.Fatalf("PlayerTurn(%v) error = %v, want ErrCombatNotActive", action, err)
		}
	}
	if _, err := b.EnemyTurn(); !errors.Is(err, ErrCombatNotActive) {
		t.Fatalf("EnemyTurn() error = %v, want ErrCombatNotActive", err)
	}
	if *player != playerBefore || *enemy != enemyBefore {
		t.Fatalf("stats changed after battle ended: player %+v enemy %+v", *player, *enemy)
	}
	if b.Turns() != 1 {
		t.Fatalf("Turns() = %d, want 1", b.Turns())
	}
}

func TestPlayerTurnRejectsInvalidAction(t *testing.T) {
	t.Parallel()

	b, err := New(warrior(), goblin(), WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, action := range []Action{0, 4, -1} {
		if _, err := b.PlayerTurn(action); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("PlayerTurn(%d) error = %v, want ErrInvalidAction", action, err)
		}
	}
	if b.Turns() != 0 {
		t.Fatalf("Turns() = %d, want 0", b.Turns())
	}
}

func TestPlayerTurnRejectsDeadPlayer(t *testing.T) {
	t.Parallel()

	player := warrior()
	b, err := New(player, goblin(), WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	player.Health = 0
	if _, err := b.PlayerTurn(ActionAttack); !errors.Is(err, ErrCharacterDead) {
		t.Fatalf("PlayerTurn() error = %v, want ErrCharacterDead", err)
	}
}

func TestAbilityCooldown(t *testing.T) {
	t.Parallel()

	enemy := &Combatant{Name: "Troll", Health: 1000, MaxHealth: 1000, Strength: 4}
	b, err := New(warrior(), enemy, WithSeed(1), WithAbilityCooldown(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	steps := []struct {
		action  Action
		wantErr error
	}{
		{action: ActionAbility},
		{action: ActionAbility, wantErr: ErrAbilityOnCooldown},
		{action: ActionAttack},
		{action: ActionAbility, wantErr: ErrAbilityOnCooldown},
		{action: ActionAttack},
		{action: ActionAbility},
	}
	for i, step := range steps {
		_, err := b.PlayerTurn(step.action)
		if !errors.Is(err, step.wantErr) {
			t.Fatalf("step %d: PlayerTurn(%v) error = %v, want %v", i, step.action, err, step.wantErr)
		}
		if err != nil {
			continue
		}
		if _, err := b.EnemyTurn(); err != nil {
			t.Fatalf("step %d: EnemyTurn() error = %v", i, err)
		}
	}
	if b.Turns() != 4 {
		t.Fatalf("Turns() = %d, want 4", b.Turns())
	}
}

func TestAbilityWithoutCooldownIsAlwaysReady(t *testing.T) {
	t.Parallel()

	enemy := &Combatant{Name: "Troll", Health: 1000, MaxHealth: 1000, Strength: 4}
	b, err := New(warrior(), enemy, WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := b.PlayerTurn(ActionAbility); err != nil {
			t.Fatalf("PlayerTurn() error = %v", err)
		}
		if !b.AbilityReady() {
			t.Fatal("expected ability to stay ready")
		}
	}
}

func TestMaxTurnsEndsInDraw(t *testing.T) {
	t.Parallel()

	enemy := goblin()
	b, err := New(warrior(), enemy, WithSource(alwaysMiss()), WithMaxTurns(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := b.PlayerTurn(ActionEscape); err != nil {
			t.Fatalf("PlayerTurn() error = %v", err)
		}
		if _, err := b.EnemyTurn(); err != nil {
			t.Fatalf("EnemyTurn() error = %v", err)
		}
	}
	if b.Active() {
		t.Fatal("expected battle to end at the turn cap")
	}
	result, _ := b.Result()
	if result != (Result{Winner: OutcomeDraw, Turns: 3}) {
		t.Fatalf("Result() = %+v, want draw after 3 turns", result)
	}
	if got := b.CheckEnd(); got != OutcomeNone {
		t.Fatalf("CheckEnd() = %v, want none", got)
	}
}

func TestResultUnavailableWhileActive(t *testing.T) {
	t.Parallel()

	b, err := New(warrior(), goblin(), WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := b.Result(); ok {
		t.Fatal("expected no result while active")
	}
}

func TestVictoryRewards(t *testing.T) {
	t.Parallel()

	got := VictoryRewards(Combatant{Rewards: Rewards{XP: 50, Gold: -3}})
	if got != (Rewards{XP: 50, Gold: 0}) {
		t.Fatalf("VictoryRewards() = %+v", got)
	}
}

func TestObserverReceivesEvents(t *testing.T) {
	t.Parallel()

	var kinds []EventKind
	obs := ObserverFunc(func(e Event) { kinds = append(kinds, e.Kind) })
	player := warrior()
	player.Class = ClassRogue
	b, err := New(player, goblin(), WithSource(alwaysMiss()), WithObserver(obs))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.PlayerTurn(ActionAbility); err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}
	if _, err := b.EnemyTurn(); err != nil {
		t.Fatalf("EnemyTurn() error = %v", err)
	}
	if _, err := b.PlayerTurn(ActionEscape); err != nil {
		t.Fatalf("PlayerTurn() error = %v", err)
	}

	want := []EventKind{EventAbilityMissed, EventAttack, EventEscapeFailed}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeNone, OutcomePlayer, OutcomeEnemy, OutcomeEscaped, OutcomeDraw} {
		got, err := ParseOutcome(o.String())
		if err != nil || got != o {
			t.Fatalf("ParseOutcome(%q) = %v, %v", o.String(), got, err)
		}
	}
	if _, err := ParseOutcome("victory"); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}
