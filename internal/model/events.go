package model

import "time"

// EventKind identifies a reply or notification sent by the battle program
type EventKind string

const (
	// Replies
	EventRegistered        EventKind = "registered"
	EventMoveMade          EventKind = "move_made"
	EventGoToWaitingState  EventKind = "go_to_waiting_state"
	EventGameIsOver        EventKind = "game_is_over"
	EventInfoUpdated       EventKind = "info_updated"
	EventRestartedContract EventKind = "restarted_contract"

	// Notifications to the mover
	EventSuccessfullyAttacked EventKind = "successfully_attacked"
	EventAttackMissed         EventKind = "attack_missed"
	EventSuccessfullyDefended EventKind = "successfully_defended"
)

// Event is the reply to a handled action
type Event struct {
	Kind     EventKind `json:"kind"`
	EntityID ActorID   `json:"entity_id,omitempty"` // Set for registered
}

// Notification is a best-effort message sent to an actor outside the reply
type Notification struct {
	Sender    ActorID   `json:"sender"`
	Recipient ActorID   `json:"recipient"`
	Kind      EventKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
