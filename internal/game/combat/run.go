package combat

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// maxConsecutiveRejections bounds how often Run re-prompts a decider that
// keeps choosing actions the battle refuses.
const maxConsecutiveRejections = 10

// View is the read-only battle state handed to a Decider.
type View struct {
	Turn              int
	Player            Combatant
	Enemy             Combatant
	Ability           Ability
	AbilityReady      bool
	CooldownRemaining int
}

// Decider chooses the player's next action.
type Decider interface {
	Decide(ctx context.Context, view View) (Action, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, view View) (Action, error)

// Decide calls f(ctx, view).
func (f DeciderFunc) Decide(ctx context.Context, view View) (Action, error) {
	return f(ctx, view)
}

// View returns a snapshot of the current battle state.
func (b *Battle) View() View {
	ability, _ := AbilityFor(b.player.Class)
	remaining := b.cooldownRemaining()
	return View{
		Turn:              b.turn,
		Player:            *b.player,
		Enemy:             *b.enemy,
		Ability:           ability,
		AbilityReady:      remaining == 0,
		CooldownRemaining: remaining,
	}
}

// Run drives the battle until it ends, asking decider for each player
// action and answering with an enemy attack. Decider errors and context
// cancellation stop the loop and leave the battle active.
func (b *Battle) Run(ctx context.Context, decider Decider) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if decider == nil {
		return Result{}, errors.New("decider is required")
	}
	if !b.active {
		return Result{}, combatNotActive(SidePlayer)
	}
	if b.player.Defeated() {
		return Result{}, characterDead(b.player)
	}
	if !b.announced {
		b.announced = true
		b.emit(Event{Kind: EventBattleStarted, Actor: b.enemy.Name, Target: b.player.Name})
	}

	rejections := 0
	for b.active {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		action, err := decider.Decide(ctx, b.View())
		if err != nil {
			return Result{}, err
		}
		if _, err := b.PlayerTurn(action); err != nil {
			if !retryable(err) {
				return Result{}, err
			}
			rejections++
			b.emit(Event{Kind: EventRejected, Actor: b.player.Name, Code: apperrors.CodeOf(err)})
			if rejections >= maxConsecutiveRejections {
				return Result{}, err
			}
			continue
		}
		rejections = 0
		if !b.active {
			break
		}
		if _, err := b.EnemyTurn(); err != nil {
			return Result{}, err
		}
	}

	result, _ := b.Result()
	return result, nil
}

func retryable(err error) bool {
	return errors.Is(err, ErrAbilityOnCooldown) || errors.Is(err, ErrInvalidAction)
}
