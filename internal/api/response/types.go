package response

import (
	"time"

	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
)

// Player represents a registered entity in API responses
type Player struct {
	Owner      string   `json:"owner"`
	EntityID   string   `json:"entity_id"`
	Energy     uint16   `json:"energy"`
	Power      uint16   `json:"power"`
	Attributes []uint32 `json:"attributes"`
	Facing     string   `json:"facing"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	attrs := make([]uint32, len(p.Attributes))
	for i, a := range p.Attributes {
		attrs[i] = uint32(a)
	}
	return Player{
		Owner:      p.Owner.String(),
		EntityID:   p.EntityID.String(),
		Energy:     p.Energy,
		Power:      p.Power,
		Attributes: attrs,
		Facing:     string(p.Facing),
	}
}

// Battle is the full session record
type Battle struct {
	ProgramID   string    `json:"program_id"`
	StoreID     string    `json:"store_id"`
	State       string    `json:"state"`
	Players     []Player  `json:"players"`
	CurrentTurn uint8     `json:"current_turn"`
	Steps       uint8     `json:"steps"`
	Winner      string    `json:"winner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BattleFromModel converts a model.Battle to a response Battle
func BattleFromModel(b *model.Battle) Battle {
	players := make([]Player, len(b.Players))
	for i, p := range b.Players {
		players[i] = PlayerFromModel(p)
	}
	return Battle{
		ProgramID:   b.ProgramID.String(),
		StoreID:     b.StoreID.String(),
		State:       string(b.State),
		Players:     players,
		CurrentTurn: b.CurrentTurn,
		Steps:       b.Steps,
		Winner:      b.Winner.String(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// Event is the reply to a request
type Event struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id,omitempty"`
}

// EventFromModel converts a model.Event
func EventFromModel(e model.Event) Event {
	return Event{
		Kind:     string(e.Kind),
		EntityID: e.EntityID.String(),
	}
}

// Notification is a message sent to an actor
type Notification struct {
	Sender    string    `json:"sender"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationList is the response for an actor's mailbox
type NotificationList struct {
	Actor         string         `json:"actor"`
	Notifications []Notification `json:"notifications"`
}

// NotificationListFromModel converts the notifications of actor
func NotificationListFromModel(actor model.ActorID, list []*model.Notification) NotificationList {
	out := NotificationList{
		Actor:         actor.String(),
		Notifications: make([]Notification, len(list)),
	}
	for i, n := range list {
		out.Notifications[i] = Notification{
			Sender:    n.Sender.String(),
			Kind:      string(n.Kind),
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}

// Session is returned when an address is claimed or logged in to
type Session struct {
	Actor        string    `json:"actor"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionFromAuth converts an auth.Session
func SessionFromAuth(s *auth.Session) Session {
	return Session{
		Actor:        s.Actor.String(),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Health is the health check response
type Health struct {
	Status    string `json:"status"`
	ProgramID string `json:"program_id"`
}
