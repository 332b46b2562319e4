package arena

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/narration"
)

func TestPromptDeciderChoices(t *testing.T) {
	var out bytes.Buffer
	d := newPromptDecider(strings.NewReader("2\n 3 \n\nfoo\n1\n"), narration.New(&out, "en-US"))
	ability, _ := combat.AbilityFor(combat.ClassMage)
	view := combat.View{
		Player:       combat.Combatant{Name: "Lia", Health: 100, MaxHealth: 100},
		Enemy:        combat.Combatant{Name: "Orc", Health: 80, MaxHealth: 80},
		Ability:      ability,
		AbilityReady: true,
	}

	want := []combat.Action{combat.ActionAbility, combat.ActionEscape, combat.ActionAttack}
	for i, w := range want {
		got, err := d.Decide(context.Background(), view)
		if err != nil {
			t.Fatalf("decide %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("decide %d = %v, want %v", i, got, w)
		}
	}
	if strings.Count(out.String(), "Please enter 1, 2 or 3.") != 2 {
		t.Fatalf("expected two invalid choice notices:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "  2) Fireball") {
		t.Fatalf("expected ability menu entry:\n%s", out.String())
	}

	if _, err := d.Decide(context.Background(), view); !errors.Is(err, errInputClosed) {
		t.Fatalf("decide after EOF error = %v, want errInputClosed", err)
	}
}

func TestPromptDeciderShowsCooldown(t *testing.T) {
	var out bytes.Buffer
	d := newPromptDecider(strings.NewReader("1\n"), narration.New(&out, "en-US"))
	ability, _ := combat.AbilityFor(combat.ClassWarrior)
	view := combat.View{Ability: ability, CooldownRemaining: 2}
	if _, err := d.Decide(context.Background(), view); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !strings.Contains(out.String(), "  2) Power Strike (ready in 2 turns)") {
		t.Fatalf("expected cooldown menu entry:\n%s", out.String())
	}
}

func TestPromptDeciderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := newPromptDecider(strings.NewReader("1\n"), narration.New(nil, "en-US"))
	if _, err := d.Decide(ctx, combat.View{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("decide error = %v, want context.Canceled", err)
	}
}
