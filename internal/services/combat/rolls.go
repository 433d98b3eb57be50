package combat

import (
	"encoding/binary"

	"github.com/mcoot/petbattle/internal/dependencies/random"
	"github.com/mcoot/petbattle/internal/model"
)

// Roll bounds. Raw rolls below the minimum are replaced by half the maximum.
const (
	MaxPower  uint16 = 10_000
	MinPower  uint16 = 3_000
	MaxEnergy uint16 = 20_000
	MinEnergy uint16 = 6_000
)

// Offsets into a registration draw
const (
	powerOffset  = 0
	energyOffset = 2
	facingOffset = 4
	coinOffset   = 0
)

// Stats are the values rolled for a newly registered entity
type Stats struct {
	Power  uint16
	Energy uint16
	Facing model.Side
}

// RollStats derives power, energy and initial facing from one draw
func RollStats(draw [random.SeedSize]byte) Stats {
	return Stats{
		Power:  MaxPower - RawPower(draw),
		Energy: RawEnergy(draw),
		Facing: model.SideFromCoin(CoinFlip(draw[facingOffset:])),
	}
}

// RawPower is the power roll before inversion, in [MinPower, MaxPower)
func RawPower(draw [random.SeedSize]byte) uint16 {
	return floorRoll(binary.BigEndian.Uint16(draw[powerOffset:]), MinPower, MaxPower)
}

// RawEnergy is the energy roll, in [MinEnergy, MaxEnergy)
func RawEnergy(draw [random.SeedSize]byte) uint16 {
	return floorRoll(binary.BigEndian.Uint16(draw[energyOffset:]), MinEnergy, MaxEnergy)
}

// TurnFromDraw picks which player index moves first
func TurnFromDraw(draw [random.SeedSize]byte) uint8 {
	return CoinFlip(draw[coinOffset:])
}

// CoinFlip returns 0 or 1 from the first byte of b
func CoinFlip(b []byte) uint8 {
	return b[0] % 2
}

func floorRoll(v, floor, bound uint16) uint16 {
	roll := v % bound
	if roll < floor {
		return bound / 2
	}
	return roll
}
