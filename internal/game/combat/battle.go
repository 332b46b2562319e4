package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/core/dice"
	"github.com/louisbranch/quest-chronicles/internal/random"
)

// DefaultMaxTurns caps a battle unless WithMaxTurns overrides it.
const DefaultMaxTurns = 100

const escapeChance = 50

// Side identifies who acts on a turn.
type Side int

const (
	SidePlayer Side = iota + 1
	SideEnemy
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Action is one entry of the player menu.
type Action int

const (
	ActionAttack Action = iota + 1
	ActionAbility
	ActionEscape
)

func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	case ActionEscape:
		return "escape"
	default:
		return "unknown"
	}
}

func (a Action) valid() bool {
	return a >= ActionAttack && a <= ActionEscape
}

// Outcome is how a battle ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayer
	OutcomeEnemy
	OutcomeEscaped
	OutcomeDraw
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:    "none",
	OutcomePlayer:  "player",
	OutcomeEnemy:   "enemy",
	OutcomeEscaped: "escaped",
	OutcomeDraw:    "draw",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(value string) (Outcome, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for o, name := range outcomeNames {
		if name == trimmed {
			return o, nil
		}
	}
	return OutcomeNone, fmt.Errorf("unknown outcome %q", value)
}

// Result is what a finished battle hands back to the game loop.
type Result struct {
	Winner     Outcome
	XPGained   int
	GoldGained int
	Turns      int
}

// VictoryRewards returns the rewards carried by a defeated enemy.
func VictoryRewards(enemy Combatant) Rewards {
	return Rewards{XP: max(0, enemy.Rewards.XP), Gold: max(0, enemy.Rewards.Gold)}
}

// Turn reports what a single PlayerTurn or EnemyTurn did.
type Turn struct {
	Number  int
	Side    Side
	Action  Action
	Effect  Effect
	Escaped bool
	// Ended is true when this turn finished the battle.
	Ended bool
}

// Battle is the combat state machine for one encounter.
type Battle struct {
	player *Combatant
	enemy  *Combatant

	src      dice.Source
	observer Observer
	maxTurns int
	cooldown int

	active         bool
	announced      bool
	turn           int
	winner         Outcome
	abilityReadyAt int
}

// Option configures a Battle.
type Option func(*Battle)

// WithSource sets the random source used for escape and ability rolls.
func WithSource(src dice.Source) Option {
	return func(b *Battle) { b.src = src }
}

// WithSeed seeds a deterministic random source.
func WithSeed(seed int64) Option {
	return func(b *Battle) { b.src = dice.NewSource(seed) }
}

// WithMaxTurns caps the number of rounds; zero or less removes the cap.
func WithMaxTurns(turns int) Option {
	return func(b *Battle) { b.maxTurns = turns }
}

// WithAbilityCooldown sets how many player turns must pass after an ability
// before it can be used again. Zero disables cooldowns.
func WithAbilityCooldown(turns int) Option {
	return func(b *Battle) { b.cooldown = max(0, turns) }
}

// WithObserver receives every battle event.
func WithObserver(o Observer) Option {
	return func(b *Battle) { b.observer = o }
}

// New starts a battle between player and enemy. A player without health
// cannot start a battle.
func New(player, enemy *Combatant, opts ...Option) (*Battle, error) {
	if player == nil || enemy == nil {
		return nil, errors.New("player and enemy are required")
	}
	if player.Defeated() {
		return nil, characterDead(player)
	}
	b := &Battle{
		player:   player,
		enemy:    enemy,
		maxTurns: DefaultMaxTurns,
		active:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.src == nil {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed battle: %w", err)
		}
		b.src = dice.NewSource(seed)
	}
	return b, nil
}

// Active reports whether the battle is still in progress.
func (b *Battle) Active() bool { return b.active }

// Turns returns the number of rounds started so far.
func (b *Battle) Turns() int { return b.turn }

// Player returns the player record the battle is mutating.
func (b *Battle) Player() *Combatant { return b.player }

// Enemy returns the enemy record the battle is mutating.
func (b *Battle) Enemy() *Combatant { return b.enemy }

// AbilityReady reports whether the player's ability may be used next turn.
func (b *Battle) AbilityReady() bool {
	return b.cooldownRemaining() == 0
}

func (b *Battle) cooldownRemaining() int {
	return max(0, b.abilityReadyAt-(b.turn+1))
}

// PlayerTurn starts a new round and executes exactly one player action.
// Rejected actions (cooldown, unknown action) do not consume the round.
func (b *Battle) PlayerTurn(action Action) (Turn, error) {
	if !b.active {
		return Turn{}, combatNotActive(SidePlayer)
	}
	if b.player.Defeated() {
		return Turn{}, characterDead(b.player)
	}
	if !action.valid() {
		return Turn{}, invalidAction(action)
	}
	if action == ActionAbility {
		if remaining := b.cooldownRemaining(); remaining > 0 {
			ability, _ := AbilityFor(b.player.Class)
			return Turn{}, abilityOnCooldown(ability, remaining)
		}
	}

	b.turn++
	turn := Turn{Number: b.turn, Side: SidePlayer, Action: action}

	switch action {
	case ActionAttack:
		damage := Damage(*b.player, *b.enemy)
		b.enemy.ApplyDamage(damage)
		turn.Effect = Effect{Kind: EffectDamage, Amount: damage}
		b.emit(Event{Kind: EventAttack, Actor: b.player.Name, Target: b.enemy.Name, Amount: damage})
	case ActionAbility:
		turn.Effect = ResolveAbility(b.player, b.enemy, b.src)
		if b.cooldown > 0 {
			b.abilityReadyAt = b.turn + b.cooldown + 1
		}
		b.emitEffect(turn.Effect)
	case ActionEscape:
		turn.Escaped = dice.Chance(b.src, escapeChance)
		if turn.Escaped {
			b.emit(Event{Kind: EventEscaped, Actor: b.player.Name, Target: b.enemy.Name})
		} else {
			b.emit(Event{Kind: EventEscapeFailed, Actor: b.player.Name, Target: b.enemy.Name})
		}
	}

	switch {
	case b.enemy.Defeated():
		b.emit(Event{Kind: EventDefeated, Actor: b.player.Name, Target: b.enemy.Name})
		b.end(OutcomePlayer)
	case turn.Escaped:
		b.end(OutcomeEscaped)
	}
	turn.Ended = !b.active
	return turn, nil
}

// EnemyTurn makes the enemy perform its basic attack on the player.
func (b *Battle) EnemyTurn() (Turn, error) {
	if !b.active {
		return Turn{}, combatNotActive(SideEnemy)
	}

	damage := Damage(*b.enemy, *b.player)
	b.player.ApplyDamage(damage)
	turn := Turn{
		Number: b.turn,
		Side:   SideEnemy,
		Action: ActionAttack,
		Effect: Effect{Kind: EffectDamage, Amount: damage},
	}
	b.emit(Event{Kind: EventAttack, Actor: b.enemy.Name, Target: b.player.Name, Amount: damage})

	switch {
	case b.player.Defeated():
		b.player.Health = 0
		b.emit(Event{Kind: EventDefeated, Actor: b.enemy.Name, Target: b.player.Name})
		b.end(OutcomeEnemy)
	case b.maxTurns > 0 && b.turn >= b.maxTurns:
		b.emit(Event{Kind: EventDraw, Actor: b.player.Name, Target: b.enemy.Name, Amount: b.turn})
		b.end(OutcomeDraw)
	}
	turn.Ended = !b.active
	return turn, nil
}

// CheckEnd reports which side has been defeated, if any.
func (b *Battle) CheckEnd() Outcome {
	switch {
	case b.enemy.Defeated():
		return OutcomePlayer
	case b.player.Defeated():
		return OutcomeEnemy
	default:
		return OutcomeNone
	}
}

// Result returns the battle result once the battle has ended.
func (b *Battle) Result() (Result, bool) {
	if b.active {
		return Result{}, false
	}
	result := Result{Winner: b.winner, Turns: b.turn}
	if b.winner == OutcomePlayer {
		rewards := VictoryRewards(*b.enemy)
		result.XPGained = rewards.XP
		result.GoldGained = rewards.Gold
	}
	return result, true
}

func (b *Battle) end(winner Outcome) {
	b.active = false
	b.winner = winner
}

func (b *Battle) emitEffect(effect Effect) {
	e := Event{Actor: b.player.Name, Target: b.enemy.Name, Ability: effect.Ability, Amount: effect.Amount}
	switch effect.Kind {
	case EffectDamage:
		e.Kind = EventAbility
	case EffectHeal:
		e.Kind = EventHeal
		e.Target = b.player.Name
	case EffectMiss:
		e.Kind = EventAbilityMissed
	default:
		return
	}
	b.emit(e)
}

func (b *Battle) emit(e Event) {
	if b.observer == nil {
		return
	}
	if e.Turn == 0 {
		e.Turn = b.turn
	}
	b.observer.Observe(e)
}
