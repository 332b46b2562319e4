// Package narration renders battle events as localized text.
package narration

import (
	"fmt"
	"io"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"github.com/louisbranch/quest-chronicles/internal/platform/i18n/catalog"
	"golang.org/x/text/message"
)

// Narrator writes one localized line per battle event.
type Narrator struct {
	out     io.Writer
	printer *message.Printer
	locale  string
}

// New returns a narrator for the best catalog match of locale.
func New(out io.Writer, locale string) *Narrator {
	bundle := catalog.Default()
	resolved := bundle.Match(locale)
	return &Narrator{
		out:     out,
		printer: bundle.Printer(resolved),
		locale:  resolved,
	}
}

// Locale returns the locale the narrator resolved to.
func (n *Narrator) Locale() string { return n.locale }

// Printer exposes the localized printer for callers rendering their own lines.
func (n *Narrator) Printer() *message.Printer { return n.printer }

// Observe implements combat.Observer.
func (n *Narrator) Observe(e combat.Event) {
	line, ok := n.render(e)
	if !ok {
		return
	}
	n.Println(line)
}

// Println writes a pre-rendered line.
func (n *Narrator) Println(line string) {
	if n.out == nil {
		return
	}
	fmt.Fprintln(n.out, line)
}

// Say renders a catalog key with arguments and writes it as one line.
func (n *Narrator) Say(key string, args ...any) {
	n.Println(n.printer.Sprintf(key, args...))
}

// Status renders the health of both combatants.
func (n *Narrator) Status(view combat.View) {
	n.Say("combat.status",
		view.Player.Name, view.Player.Health, view.Player.MaxHealth,
		view.Enemy.Name, view.Enemy.Health, view.Enemy.MaxHealth,
	)
}

// AbilityName returns the localized display name for an ability key.
func (n *Narrator) AbilityName(key string) string {
	if key == "" {
		return ""
	}
	return n.printer.Sprintf("combat.ability_name." + key)
}

// ErrorMessage returns the localized message for err's domain code.
func (n *Narrator) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return n.codeMessage(apperrors.CodeOf(err))
}

func (n *Narrator) codeMessage(code apperrors.Code) string {
	return n.printer.Sprintf(code.MessageKey())
}

func (n *Narrator) render(e combat.Event) (string, bool) {
	p := n.printer
	switch e.Kind {
	case combat.EventBattleStarted:
		return p.Sprintf("combat.battle_started", e.Actor, e.Target), true
	case combat.EventAttack:
		return p.Sprintf("combat.attack", e.Actor, e.Target, e.Amount), true
	case combat.EventAbility:
		return p.Sprintf("combat.ability", e.Actor, e.Target, e.Amount, n.AbilityName(e.Ability)), true
	case combat.EventAbilityMissed:
		return p.Sprintf("combat.ability_missed", e.Actor, e.Target, e.Amount, n.AbilityName(e.Ability)), true
	case combat.EventHeal:
		return p.Sprintf("combat.heal", e.Actor, e.Target, e.Amount, n.AbilityName(e.Ability)), true
	case combat.EventEscaped:
		return p.Sprintf("combat.escaped", e.Actor, e.Target), true
	case combat.EventEscapeFailed:
		return p.Sprintf("combat.escape_failed", e.Actor, e.Target), true
	case combat.EventDefeated:
		return p.Sprintf("combat.defeated", e.Actor, e.Target), true
	case combat.EventDraw:
		return p.Sprintf("combat.draw", e.Actor, e.Target, e.Amount), true
	case combat.EventRejected:
		return n.codeMessage(e.Code), true
	default:
		return "", false
	}
}
