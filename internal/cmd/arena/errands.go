package arena

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/item"
	"github.com/louisbranch/quest-chronicles/internal/game/quest"
	"github.com/louisbranch/quest-chronicles/internal/narration"
	"github.com/louisbranch/quest-chronicles/internal/storage"
	"github.com/louisbranch/quest-chronicles/internal/town"
)

// Errands are the non-battle actions selected by flags. At most one runs.
type Errands struct {
	Inventory bool
	Shop      bool
	Quests    bool
	Delete    bool
	Buy       string
	Sell      string
	Equip     string
	Unequip   string
	Use       string
	Accept    string
	Complete  string
	Abandon   string
}

func (e *Errands) register(fs *flag.FlagSet) {
	fs.BoolVar(&e.Inventory, "inventory", false, "Show the character sheet and inventory and exit")
	fs.BoolVar(&e.Shop, "shop", false, "List items for sale and exit")
	fs.BoolVar(&e.Quests, "quests", false, "Show the quest board and exit")
	fs.BoolVar(&e.Delete, "delete", false, "Delete the character's save and exit")
	fs.StringVar(&e.Buy, "buy", "", "Buy an item by id")
	fs.StringVar(&e.Sell, "sell", "", "Sell an item by id for half its cost")
	fs.StringVar(&e.Equip, "equip", "", "Equip a weapon or armor by id")
	fs.StringVar(&e.Unequip, "unequip", "", "Unequip a slot (weapon or armor)")
	fs.StringVar(&e.Use, "use", "", "Use a consumable by id")
	fs.StringVar(&e.Accept, "accept", "", "Accept a quest by id")
	fs.StringVar(&e.Complete, "complete", "", "Complete an active quest by id")
	fs.StringVar(&e.Abandon, "abandon", "", "Abandon an active quest by id")
}

func (e Errands) selected() []string {
	var names []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"inventory", e.Inventory},
		{"shop", e.Shop},
		{"quests", e.Quests},
		{"delete", e.Delete},
		{"buy", e.Buy != ""},
		{"sell", e.Sell != ""},
		{"equip", e.Equip != ""},
		{"unequip", e.Unequip != ""},
		{"use", e.Use != ""},
		{"accept", e.Accept != ""},
		{"complete", e.Complete != ""},
		{"abandon", e.Abandon != ""},
	} {
		if f.set {
			names = append(names, f.name)
		}
	}
	return names
}

// Any reports whether an errand flag was given.
func (e Errands) Any() bool {
	return len(e.selected()) > 0
}

func runErrands(ctx context.Context, e Errands, characters storage.CharacterStore, name string, n *narration.Narrator) error {
	if picked := e.selected(); len(picked) > 1 {
		return fmt.Errorf("choose one errand, got -%s", strings.Join(picked, " -"))
	}
	items, err := item.Default()
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	quests, err := quest.Default()
	if err != nil {
		return fmt.Errorf("load quests: %w", err)
	}
	svc, err := town.NewService(characters, items, quests)
	if err != nil {
		return err
	}

	switch {
	case e.Inventory:
		c, err := svc.Character(ctx, name)
		if err != nil {
			return err
		}
		printSheet(n, c, items)
	case e.Shop:
		c, err := svc.Character(ctx, name)
		if err != nil {
			return err
		}
		printShop(n, c, items)
	case e.Quests:
		c, err := svc.Character(ctx, name)
		if err != nil {
			return err
		}
		printQuests(n, svc, c)
	case e.Delete:
		if err := svc.Delete(ctx, name); err != nil {
			return err
		}
		n.Say("cli.deleted", name)
	case e.Buy != "":
		c, it, err := svc.Buy(ctx, name, e.Buy)
		if err != nil {
			return err
		}
		n.Say("cli.shop.bought", c.Name, it.Name, it.Cost, c.Gold)
	case e.Sell != "":
		c, price, err := svc.Sell(ctx, name, e.Sell)
		if err != nil {
			return err
		}
		it, _ := items.Item(e.Sell)
		n.Say("cli.shop.sold", c.Name, it.Name, price)
	case e.Equip != "":
		c, previous, err := svc.Equip(ctx, name, e.Equip)
		if err != nil {
			return err
		}
		if previous != "" {
			n.Say("cli.equip.replaced", itemName(items, previous))
		}
		n.Say("cli.equip.done", c.Name, itemName(items, e.Equip))
	case e.Unequip != "":
		c, removed, err := svc.Unequip(ctx, name, e.Unequip)
		if err != nil {
			return err
		}
		if removed == "" {
			n.Say("cli.equip.empty")
			return nil
		}
		n.Say("cli.equip.removed", c.Name, itemName(items, removed))
	case e.Use != "":
		c, it, err := svc.Use(ctx, name, e.Use)
		if err != nil {
			return err
		}
		n.Say("cli.item.used", c.Name, it.Name, c.Health, c.MaxHealth)
	case e.Accept != "":
		_, q, err := svc.AcceptQuest(ctx, name, e.Accept)
		if err != nil {
			return err
		}
		n.Say("cli.quest.accepted", q.Title)
	case e.Complete != "":
		c, progress, err := svc.CompleteQuest(ctx, name, e.Complete)
		if err != nil {
			return err
		}
		q, _ := quests.Quest(e.Complete)
		n.Say("cli.quest.completed", q.Title, progress.XPGained, progress.GoldGained)
		if progress.LevelsGained > 0 {
			n.Say("cli.level_up", c.Name, c.Level)
		}
	case e.Abandon != "":
		_, q, err := svc.AbandonQuest(ctx, name, e.Abandon)
		if err != nil {
			return err
		}
		n.Say("cli.quest.abandoned", q.Title)
	default:
		return errors.New("no errand selected")
	}
	return nil
}

func itemName(items *item.Catalog, id string) string {
	if it, ok := items.Item(id); ok {
		return it.Name
	}
	return id
}

func printSheet(n *narration.Narrator, c *character.Character, items *item.Catalog) {
	n.Say("cli.sheet.header", c.Name, c.Level, c.Class.String(), c.Health, c.MaxHealth,
		c.Strength, c.Magic, c.Experience, c.XPToNextLevel(), c.Gold)
	none := n.Printer().Sprintf("cli.none")
	weapon, armor := none, none
	if c.EquippedWeapon != "" {
		weapon = itemName(items, c.EquippedWeapon)
	}
	if c.EquippedArmor != "" {
		armor = itemName(items, c.EquippedArmor)
	}
	n.Say("cli.sheet.equipped", weapon, armor)
	n.Say("cli.sheet.inventory")
	if len(c.Inventory) == 0 {
		n.Say("cli.sheet.empty")
		return
	}
	seen := map[string]bool{}
	for _, id := range c.Inventory {
		if seen[id] {
			continue
		}
		seen[id] = true
		kind := "?"
		if it, ok := items.Item(id); ok {
			kind = string(it.Type)
		}
		n.Say("cli.sheet.item", itemName(items, id), kind, c.CountItem(id))
	}
}

func printShop(n *narration.Narrator, c *character.Character, items *item.Catalog) {
	n.Say("cli.shop.header", c.Gold)
	for _, id := range items.IDs() {
		it, _ := items.Item(id)
		n.Say("cli.shop.line", it.ID, it.Name, it.Type, it.Effect.String(), it.Cost)
	}
}

func printQuests(n *narration.Narrator, svc *town.Service, c *character.Character) {
	section := func(header string, list []quest.Quest) {
		n.Say(header)
		if len(list) == 0 {
			n.Say("cli.quests.empty")
			return
		}
		for _, q := range list {
			n.Say("cli.quests.line", q.ID, q.Title, q.RequiredLevel, q.RewardXP, q.RewardGold)
		}
	}
	lookup := func(ids []string) []quest.Quest {
		var out []quest.Quest
		for _, id := range ids {
			if q, ok := svc.Quests().Quest(id); ok {
				out = append(out, q)
			}
		}
		return out
	}
	section("cli.quests.active", lookup(c.ActiveQuests))
	section("cli.quests.available", svc.Available(c))
	section("cli.quests.completed", lookup(c.CompletedQuests))
}
