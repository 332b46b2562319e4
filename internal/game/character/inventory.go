package character

import (
	"fmt"
	"slices"

	"github.com/louisbranch/quest-chronicles/internal/game/item"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// ItemLookup resolves item ids stored on a character.
type ItemLookup interface {
	Item(id string) (item.Item, bool)
}

// HasItem reports whether the inventory holds at least one id.
func (c *Character) HasItem(id string) bool {
	return slices.Contains(c.Inventory, id)
}

// CountItem counts the copies of id in the inventory.
func (c *Character) CountItem(id string) int {
	n := 0
	for _, held := range c.Inventory {
		if held == id {
			n++
		}
	}
	return n
}

// Equipped returns the item id in slot, or "" when the slot is empty.
func (c *Character) Equipped(slot item.Type) string {
	switch slot {
	case item.TypeWeapon:
		return c.EquippedWeapon
	case item.TypeArmor:
		return c.EquippedArmor
	}
	return ""
}

func (c *Character) setEquipped(slot item.Type, id string) {
	switch slot {
	case item.TypeWeapon:
		c.EquippedWeapon = id
	case item.TypeArmor:
		c.EquippedArmor = id
	}
}

func (c *Character) removeItem(id string) error {
	i := slices.Index(c.Inventory, id)
	if i < 0 {
		return itemNotFound(c.Name, id)
	}
	c.Inventory = slices.Delete(c.Inventory, i, i+1)
	return nil
}

// UseItem consumes a consumable from the inventory and applies its effect.
// Defeated characters cannot use items; Revive them first.
func (c *Character) UseItem(it item.Item) error {
	if !c.HasItem(it.ID) {
		return itemNotFound(c.Name, it.ID)
	}
	if it.Type != item.TypeConsumable {
		return invalidItemType(it, item.TypeConsumable)
	}
	if c.Defeated() {
		return apperrors.WithMetadata(
			apperrors.CodeCharacterDead,
			fmt.Sprintf("%s cannot use items while defeated", c.Name),
			map[string]string{"name": c.Name},
		)
	}
	c.applyEffect(it.Effect, 1)
	return c.removeItem(it.ID)
}

// Equip moves a weapon or armor from the inventory into its slot and applies
// its bonus. Whatever occupied the slot goes back to the inventory without
// its bonus; its id is returned.
func (c *Character) Equip(it item.Item, items ItemLookup) (string, error) {
	if !c.HasItem(it.ID) {
		return "", itemNotFound(c.Name, it.ID)
	}
	if !it.Type.Equipment() {
		return "", invalidItemType(it, item.TypeWeapon, item.TypeArmor)
	}
	previous, err := c.Unequip(it.Type, items)
	if err != nil {
		return "", err
	}
	if err := c.removeItem(it.ID); err != nil {
		return "", err
	}
	c.applyEffect(it.Effect, 1)
	c.setEquipped(it.Type, it.ID)
	return previous, nil
}

// Unequip returns the item in slot to the inventory and removes its bonus.
// It returns the item id, or "" when the slot was empty.
func (c *Character) Unequip(slot item.Type, items ItemLookup) (string, error) {
	if !slot.Equipment() {
		return "", apperrors.WithMetadata(
			apperrors.CodeInvalidItemType,
			fmt.Sprintf("%q is not an equipment slot", slot),
			map[string]string{"slot": string(slot)},
		)
	}
	id := c.Equipped(slot)
	if id == "" {
		return "", nil
	}
	it, ok := items.Item(id)
	if !ok {
		return "", itemNotFound(c.Name, id)
	}
	c.applyEffect(it.Effect, -1)
	c.setEquipped(slot, "")
	c.Inventory = append(c.Inventory, id)
	return id, nil
}

// Purchase pays the item's cost and adds it to the inventory.
func (c *Character) Purchase(it item.Item) error {
	if _, err := c.AddGold(-it.Cost); err != nil {
		return err
	}
	c.Inventory = append(c.Inventory, it.ID)
	return nil
}

// Sell removes one copy of the item and pays half its cost. It returns the
// gold received.
func (c *Character) Sell(it item.Item) (int, error) {
	if err := c.removeItem(it.ID); err != nil {
		return 0, err
	}
	price := it.SellPrice()
	if _, err := c.AddGold(price); err != nil {
		return 0, err
	}
	return price, nil
}

// applyEffect adds sign*value to the effect's stat. Health always ends in
// [0, MaxHealth] and MaxHealth never drops below 1.
func (c *Character) applyEffect(e item.Effect, sign int) {
	delta := sign * e.Value
	switch e.Stat {
	case item.StatHealth:
		if delta >= 0 {
			c.Heal(delta)
		} else {
			c.ApplyDamage(-delta)
		}
	case item.StatMaxHealth:
		c.MaxHealth = max(1, c.MaxHealth+delta)
		c.Health = min(c.Health, c.MaxHealth)
	case item.StatStrength:
		c.Strength = max(0, c.Strength+delta)
	case item.StatMagic:
		c.Magic = max(0, c.Magic+delta)
	}
}

func itemNotFound(name, id string) error {
	return apperrors.WithMetadata(
		apperrors.CodeItemNotFound,
		fmt.Sprintf("%s has no %q", name, id),
		map[string]string{"name": name, "item": id},
	)
}

func invalidItemType(it item.Item, want ...item.Type) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidItemType,
		fmt.Sprintf("%s is a %s, want %v", it.ID, it.Type, want),
		map[string]string{"item": it.ID, "type": string(it.Type)},
	)
}
