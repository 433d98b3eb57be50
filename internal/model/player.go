package model

import (
	"slices"
	"strings"
)

// ActorID is the address of an account or program
type ActorID string

// String returns the address as a string
func (a ActorID) String() string {
	return string(a)
}

// IsZero reports whether the address is unset
func (a ActorID) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// AttributeID identifies an item sold by the attribute store
type AttributeID uint32

// AttributeSet is a sorted, duplicate-free set of attribute ids
type AttributeSet []AttributeID

// NewAttributeSet builds a set from the given ids
func NewAttributeSet(ids ...AttributeID) AttributeSet {
	set := make(AttributeSet, 0, len(ids))
	set = append(set, ids...)
	slices.Sort(set)
	return slices.Compact(set)
}

// Contains reports whether id is in the set
func (s AttributeSet) Contains(id AttributeID) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// Side is the direction a player faces
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// Valid reports whether the side is LEFT or RIGHT
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// SideFromCoin maps a coin flip to a side: 0 is LEFT, anything else RIGHT
func SideFromCoin(coin uint8) Side {
	if coin == 0 {
		return SideLeft
	}
	return SideRight
}

// CombatAction is what a player does on their move
type CombatAction string

const (
	ActionAttack CombatAction = "ATTACK"
	ActionDefend CombatAction = "DEFEND"
)

// Player is a registered entity in a battle
type Player struct {
	Owner      ActorID      `json:"owner"`
	EntityID   ActorID      `json:"entity_id"`
	Energy     uint16       `json:"energy"`
	Power      uint16       `json:"power"`
	Attributes AttributeSet `json:"attributes"`
	Facing     Side         `json:"facing"`
}
