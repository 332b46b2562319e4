package arena

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/narration"
)

// errInputClosed is returned when the player input ends mid-battle.
var errInputClosed = errors.New("input closed before the battle ended")

var choices = map[string]combat.Action{
	"1": combat.ActionAttack,
	"2": combat.ActionAbility,
	"3": combat.ActionEscape,
}

// promptDecider reads one menu choice per turn.
type promptDecider struct {
	scanner  *bufio.Scanner
	narrator *narration.Narrator
}

func newPromptDecider(in io.Reader, narrator *narration.Narrator) *promptDecider {
	return &promptDecider{scanner: bufio.NewScanner(in), narrator: narrator}
}

func (d *promptDecider) Decide(ctx context.Context, view combat.View) (combat.Action, error) {
	n := d.narrator
	n.Say("combat.turn", view.Turn+1)
	n.Status(view)
	n.Say("cli.menu.title")
	n.Say("cli.menu.attack")
	abilityName := n.AbilityName(view.Ability.Key)
	if view.AbilityReady {
		n.Say("cli.menu.ability", abilityName)
	} else {
		n.Say("cli.menu.ability_cooldown", abilityName, view.CooldownRemaining)
	}
	n.Say("cli.menu.escape")

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n.Say("cli.prompt")
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, errInputClosed
		}
		if action, ok := choices[strings.TrimSpace(d.scanner.Text())]; ok {
			return action, nil
		}
		n.Say("cli.invalid_choice")
	}
}
