package character

import (
	"slices"
	"testing"

	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/game/item"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

func items(t *testing.T) *item.Catalog {
	t.Helper()
	c, err := item.Default()
	if err != nil {
		t.Fatalf("item.Default() error = %v", err)
	}
	return c
}

func mustItem(t *testing.T, c *item.Catalog, id string) item.Item {
	t.Helper()
	it, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", id, err)
	}
	return it
}

func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("error = %v, want code %q", err, code)
	}
}

func TestPurchaseAndSell(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)

	if err := c.Purchase(mustItem(t, catalog, "iron_sword")); err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if c.Gold != 50 || !slices.Equal(c.Inventory, []string{"iron_sword"}) {
		t.Fatalf("after purchase gold %d inventory %v", c.Gold, c.Inventory)
	}

	wantCode(t, c.Purchase(mustItem(t, catalog, "chain_mail")), apperrors.CodeInsufficientGold)
	if c.Gold != 50 || len(c.Inventory) != 1 {
		t.Fatalf("failed purchase changed state: gold %d inventory %v", c.Gold, c.Inventory)
	}

	price, err := c.Sell(mustItem(t, catalog, "iron_sword"))
	if err != nil {
		t.Fatalf("Sell() error = %v", err)
	}
	if price != 25 || c.Gold != 75 || len(c.Inventory) != 0 {
		t.Fatalf("after sell price %d gold %d inventory %v", price, c.Gold, c.Inventory)
	}
	_, err = c.Sell(mustItem(t, catalog, "iron_sword"))
	wantCode(t, err, apperrors.CodeItemNotFound)
	if c.Gold != 75 {
		t.Fatalf("failed sell changed gold to %d", c.Gold)
	}
}

func TestEquipWeapon(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)
	c.Inventory = []string{"iron_sword", "steel_sword"}

	previous, err := c.Equip(mustItem(t, catalog, "iron_sword"), catalog)
	if err != nil {
		t.Fatalf("Equip(iron_sword) error = %v", err)
	}
	if previous != "" || c.EquippedWeapon != "iron_sword" || c.Strength != 20 {
		t.Fatalf("after iron_sword previous %q weapon %q strength %d", previous, c.EquippedWeapon, c.Strength)
	}

	previous, err = c.Equip(mustItem(t, catalog, "steel_sword"), catalog)
	if err != nil {
		t.Fatalf("Equip(steel_sword) error = %v", err)
	}
	if previous != "iron_sword" || c.EquippedWeapon != "steel_sword" || c.Strength != 25 {
		t.Fatalf("after steel_sword previous %q weapon %q strength %d", previous, c.EquippedWeapon, c.Strength)
	}
	if !slices.Equal(c.Inventory, []string{"iron_sword"}) {
		t.Fatalf("inventory = %v, want [iron_sword]", c.Inventory)
	}

	removed, err := c.Unequip(item.TypeWeapon, catalog)
	if err != nil {
		t.Fatalf("Unequip() error = %v", err)
	}
	if removed != "steel_sword" || c.EquippedWeapon != "" || c.Strength != 15 {
		t.Fatalf("after unequip removed %q weapon %q strength %d", removed, c.EquippedWeapon, c.Strength)
	}
	if removed, err := c.Unequip(item.TypeWeapon, catalog); err != nil || removed != "" {
		t.Fatalf("Unequip(empty) = %q, %v", removed, err)
	}
}

func TestArmorClampsHealth(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)
	c.Inventory = []string{"chain_mail"}

	if _, err := c.Equip(mustItem(t, catalog, "chain_mail"), catalog); err != nil {
		t.Fatalf("Equip() error = %v", err)
	}
	if c.MaxHealth != 125 || c.Health != 100 {
		t.Fatalf("equipped health = %d/%d, want 100/125", c.Health, c.MaxHealth)
	}
	c.Health = 120
	if _, err := c.Unequip(item.TypeArmor, catalog); err != nil {
		t.Fatalf("Unequip() error = %v", err)
	}
	if c.MaxHealth != 100 || c.Health != 100 {
		t.Fatalf("unequipped health = %d/%d, want 100/100", c.Health, c.MaxHealth)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestEquipErrors(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)
	c.Inventory = []string{"health_potion"}

	_, err := c.Equip(mustItem(t, catalog, "iron_sword"), catalog)
	wantCode(t, err, apperrors.CodeItemNotFound)

	_, err = c.Equip(mustItem(t, catalog, "health_potion"), catalog)
	wantCode(t, err, apperrors.CodeInvalidItemType)

	_, err = c.Unequip(item.TypeConsumable, catalog)
	wantCode(t, err, apperrors.CodeInvalidItemType)

	c.EquippedArmor = "mithril"
	_, err = c.Unequip(item.TypeArmor, catalog)
	wantCode(t, err, apperrors.CodeItemNotFound)
	if c.EquippedArmor != "mithril" {
		t.Fatalf("failed unequip cleared slot")
	}
}

func TestUseItem(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)
	c.Inventory = []string{"health_potion", "iron_sword", "strength_tonic"}
	c.Health = 90

	if err := c.UseItem(mustItem(t, catalog, "health_potion")); err != nil {
		t.Fatalf("UseItem(potion) error = %v", err)
	}
	if c.Health != 100 || c.HasItem("health_potion") {
		t.Fatalf("after potion health %d inventory %v", c.Health, c.Inventory)
	}
	if err := c.UseItem(mustItem(t, catalog, "strength_tonic")); err != nil {
		t.Fatalf("UseItem(tonic) error = %v", err)
	}
	if c.Strength != 17 {
		t.Fatalf("strength = %d, want 17", c.Strength)
	}

	wantCode(t, c.UseItem(mustItem(t, catalog, "iron_sword")), apperrors.CodeInvalidItemType)
	wantCode(t, c.UseItem(mustItem(t, catalog, "health_potion")), apperrors.CodeItemNotFound)
}

func TestUseItemRejectsDefeated(t *testing.T) {
	t.Parallel()

	catalog := items(t)
	c, _ := New("Aria", combat.ClassWarrior)
	c.Inventory = []string{"health_potion", "health_potion"}
	c.Health = 0

	wantCode(t, c.UseItem(mustItem(t, catalog, "health_potion")), apperrors.CodeCharacterDead)
	if c.Health != 0 || c.CountItem("health_potion") != 2 {
		t.Fatalf("rejected use changed state: health %d inventory %v", c.Health, c.Inventory)
	}
}
