package domain

import (
	"fmt"
	"strings"
)

// ItemType is the closed set of tradable item categories. Names match the
// upstream API vocabulary with spaces removed.
type ItemType int

const (
	Armor ItemType = iota
	Back
	Bag
	Consumable
	Container
	CraftingMaterial
	Gizmo
	Mini
	Trinket
	Trophy
	UpgradeComponent
	Weapon
)

var itemTypeNames = [...]string{
	"Armor", "Back", "Bag", "Consumable", "Container", "CraftingMaterial",
	"Gizmo", "Mini", "Trinket", "Trophy", "UpgradeComponent", "Weapon",
}

// AllItemTypes lists every item type in declaration order.
func AllItemTypes() []ItemType {
	out := make([]ItemType, len(itemTypeNames))
	for i := range out {
		out[i] = ItemType(i)
	}
	return out
}

func (t ItemType) String() string {
	if t < 0 || int(t) >= len(itemTypeNames) {
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
	return itemTypeNames[t]
}

// ParseItemType resolves a type name to its tag. Embedded spaces are
// insignificant ("Crafting Material" and "CraftingMaterial" are the same
// tag). Unrecognized names return ErrUnknownType.
func ParseItemType(name string) (ItemType, error) {
	stripped := strings.ReplaceAll(name, " ", "")
	for i, n := range itemTypeNames {
		if n == stripped {
			return ItemType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: item type %q", ErrUnknownType, name)
}
