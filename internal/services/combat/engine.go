package combat

import (
	"math"

	"github.com/mcoot/petbattle/internal/model"
)

// Attribute ids sold by the store. Swords and shields share the id space.
const (
	IronID   model.AttributeID = 1
	BronzeID model.AttributeID = 2
	SilverID model.AttributeID = 3
)

// Balance constants
const (
	IronSwordPower   uint16 = 2
	BronzeSwordPower uint16 = 5
	SilverSwordPower uint16 = 8

	IronShieldProtection   uint16 = 2000
	BronzeShieldProtection uint16 = 5000
	SilverShieldProtection uint16 = 8000

	// Used when nothing is equipped
	BareHanded uint16 = 1
)

// equipment is checked in this order; the first equipped id wins
var (
	swords = []struct {
		id    model.AttributeID
		power uint16
	}{
		{IronID, IronSwordPower},
		{BronzeID, BronzeSwordPower},
		{SilverID, SilverSwordPower},
	}
	shields = []struct {
		id         model.AttributeID
		protection uint16
	}{
		{IronID, IronShieldProtection},
		{BronzeID, BronzeShieldProtection},
		{SilverID, SilverShieldProtection},
	}
)

// SwordMultiplier returns the attack multiplier of the equipped sword
func SwordMultiplier(attrs model.AttributeSet) uint16 {
	for _, s := range swords {
		if attrs.Contains(s.id) {
			return s.power
		}
	}
	return BareHanded
}

// ShieldProtection returns the energy restored by the equipped shield
func ShieldProtection(attrs model.AttributeSet) uint16 {
	for _, s := range shields {
		if attrs.Contains(s.id) {
			return s.protection
		}
	}
	return BareHanded
}

// Outcome is the result of resolving one move
type Outcome struct {
	Mover    model.Player
	Defender model.Player

	// Notification to send to the mover's owner; empty if none
	Notification model.EventKind
}

// Resolve applies action on side by mover against defender.
// Unknown actions leave both players untouched and produce no notification.
func Resolve(mover, defender model.Player, action model.CombatAction, side model.Side) Outcome {
	out := Outcome{Mover: mover, Defender: defender}

	switch action {
	case model.ActionAttack:
		out.Mover.Facing = side
		if out.Mover.Facing == out.Defender.Facing {
			damage := SaturatingMul(SwordMultiplier(mover.Attributes), mover.Power)
			out.Defender.Energy = SaturatingSub(out.Defender.Energy, damage)
			out.Notification = model.EventSuccessfullyAttacked
		} else {
			out.Notification = model.EventAttackMissed
		}

	case model.ActionDefend:
		out.Mover.Facing = side
		if out.Mover.Facing == out.Defender.Facing {
			out.Mover.Energy = SaturatingAdd(out.Mover.Energy, ShieldProtection(mover.Attributes))
		}
		out.Notification = model.EventSuccessfullyDefended
	}

	return out
}

// IsDefeated reports whether a player has no energy left
func IsDefeated(p model.Player) bool {
	return p.Energy == 0
}

// SaturatingSub returns a-b, floored at 0
func SaturatingSub(a, b uint16) uint16 {
	if b > a {
		return 0
	}
	return a - b
}

// SaturatingAdd returns a+b, capped at the uint16 maximum
func SaturatingAdd(a, b uint16) uint16 {
	if a > math.MaxUint16-b {
		return math.MaxUint16
	}
	return a + b
}

// SaturatingMul returns a*b, capped at the uint16 maximum
func SaturatingMul(a, b uint16) uint16 {
	p := uint32(a) * uint32(b)
	if p > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(p)
}
