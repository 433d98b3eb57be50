package model

import "time"

// ActionKind identifies a request handled by the battle program
type ActionKind string

const (
	ActionKindRegister      ActionKind = "register"
	ActionKindMove          ActionKind = "move"
	ActionKindUpdateInfo    ActionKind = "update_info"
	ActionKindResetContract ActionKind = "reset_contract"
)

// Action is a request payload. Only the fields relevant to Kind are set.
type Action struct {
	Kind     ActionKind   `json:"kind"`
	EntityID ActorID      `json:"entity_id,omitempty"`
	Side     Side         `json:"side,omitempty"`
	Combat   CombatAction `json:"combat_action,omitempty"`
}

// RegisterAction asks to register an entity into the battle
func RegisterAction(entityID ActorID) Action {
	return Action{Kind: ActionKindRegister, EntityID: entityID}
}

// MoveAction makes a move facing side
func MoveAction(side Side, combat CombatAction) Action {
	return Action{Kind: ActionKindMove, Side: side, Combat: combat}
}

// UpdateInfoAction refreshes player attributes after a round
func UpdateInfoAction() Action {
	return Action{Kind: ActionKindUpdateInfo}
}

// ResetContractAction reopens registration after a game
func ResetContractAction() Action {
	return Action{Kind: ActionKindResetContract}
}

// Message is an action together with its sender
type Message struct {
	Source ActorID `json:"source"`
	Action Action  `json:"action"`
}

// DelayedMessage is a message scheduled for future delivery
type DelayedMessage struct {
	ID          string    `json:"id"`
	Source      ActorID   `json:"source"`
	Destination ActorID   `json:"destination"`
	Action      Action    `json:"action"`
	GasLimit    uint64    `json:"gas_limit"`
	DelayBlocks uint32    `json:"delay_blocks"`
	DueAt       time.Time `json:"due_at"`

	// Attempts counts failed deliveries
	Attempts int `json:"attempts,omitempty"`
}
