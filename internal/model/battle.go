package model

import (
	"slices"
	"time"
)

// BattleState represents the current phase of a battle
type BattleState string

const (
	BattleStateRegistration BattleState = "registration" // Waiting for two entities to register
	BattleStateMoves        BattleState = "moves"        // Players take turns
	BattleStateWaiting      BattleState = "waiting"      // Round over, attributes being refreshed
	BattleStateGameIsOver   BattleState = "game_is_over" // One entity ran out of energy
)

// Battle is the session record owned by a battle program
type Battle struct {
	ProgramID ActorID     `json:"program_id"`
	StoreID   ActorID     `json:"store_id"`
	State     BattleState `json:"state"`

	// Players in registration order; index 0/1 is the turn identity
	Players     []Player `json:"players"`
	CurrentTurn uint8    `json:"current_turn"`
	Steps       uint8    `json:"steps"`
	Winner      ActorID  `json:"winner"`

	// Draws counts random draws taken so far and keys the next one
	Draws uint64 `json:"draws"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBattle creates an empty battle in the registration state
func NewBattle(programID, storeID ActorID, now time.Time) *Battle {
	return &Battle{
		ProgramID: programID,
		StoreID:   storeID,
		State:     BattleStateRegistration,
		Players:   []Player{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy that can be mutated without touching b
func (b *Battle) Clone() *Battle {
	c := *b
	c.Players = make([]Player, len(b.Players))
	for i, p := range b.Players {
		p.Attributes = slices.Clone(p.Attributes)
		c.Players[i] = p
	}
	return &c
}

// HasEntity reports whether the entity is already registered
func (b *Battle) HasEntity(entityID ActorID) bool {
	for _, p := range b.Players {
		if p.EntityID == entityID {
			return true
		}
	}
	return false
}

// Mover returns the player whose move is expected, or nil outside a full game
func (b *Battle) Mover() *Player {
	if int(b.CurrentTurn) >= len(b.Players) {
		return nil
	}
	return &b.Players[b.CurrentTurn]
}

// OtherTurn returns the index of the player who is not on turn
func (b *Battle) OtherTurn() uint8 {
	return (b.CurrentTurn + 1) % 2
}
