package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Battle:
		o.printBattle(v)
	case Event:
		o.printEvent(v)
	case NotificationList:
		o.printNotifications(v)
	case CollaboratorReply:
		o.printReply(v)
	case HealthResult:
		o.printHealthResult(v)
	case SessionResult:
		o.printSession(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Owner      string   `json:"owner"`
	EntityID   string   `json:"entity_id"`
	Energy     uint16   `json:"energy"`
	Power      uint16   `json:"power"`
	Attributes []uint32 `json:"attributes"`
	Facing     string   `json:"facing"`
}

// Battle response type
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

// Event is the reply to a battle request
type Event struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id,omitempty"`
}

// Notification response type
type Notification struct {
	Sender    string    `json:"sender"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationList response type
type NotificationList struct {
	Actor         string         `json:"actor"`
	Notifications []Notification `json:"notifications"`
}

// CollaboratorReply is a dev network protocol reply
type CollaboratorReply struct {
	Kind       string   `json:"kind"`
	Owner      string   `json:"owner,omitempty"`
	Attributes []uint32 `json:"attributes,omitempty"`
}

// SessionResult is returned by claim, login and whoami
type SessionResult struct {
	Actor        string    `json:"actor"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	ProgramID string `json:"program_id"`
}

func (o *Output) printBattle(b Battle) {
	fmt.Printf("Battle: %s (store %s)\n", b.ProgramID, b.StoreID)
	fmt.Printf("State: %s\n", b.State)

	if len(b.Players) > 0 {
		fmt.Printf("Turn: %d, step %d\n", b.CurrentTurn, b.Steps)
		fmt.Printf("Players (%d):\n", len(b.Players))
		for i, p := range b.Players {
			marker := ""
			if b.State == "moves" && int(b.CurrentTurn) == i {
				marker = " [to move]"
			}
			fmt.Printf("  %d. %s (owner %s) energy=%d power=%d facing=%s attributes=%v%s\n",
				i, p.EntityID, p.Owner, p.Energy, p.Power, p.Facing, p.Attributes, marker)
		}
	}

	if b.Winner != "" {
		fmt.Printf("Last winner: %s\n", b.Winner)
	}
}

func (o *Output) printEvent(e Event) {
	if e.EntityID != "" {
		fmt.Printf("%s: %s\n", e.Kind, e.EntityID)
		return
	}
	fmt.Println(e.Kind)
}

func (o *Output) printNotifications(l NotificationList) {
	if len(l.Notifications) == 0 {
		fmt.Printf("No notifications for %s\n", l.Actor)
		return
	}
	fmt.Printf("Notifications for %s (%d):\n", l.Actor, len(l.Notifications))
	for _, n := range l.Notifications {
		fmt.Printf("  [%s] %s from %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"), n.Kind, n.Sender)
	}
}

func (o *Output) printReply(r CollaboratorReply) {
	switch {
	case r.Owner != "":
		fmt.Printf("Owner: %s\n", r.Owner)
	default:
		fmt.Printf("Attributes: %v\n", r.Attributes)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.ProgramID != "" {
		fmt.Printf("Program: %s\n", h.ProgramID)
	}
}

func (o *Output) printSession(s SessionResult) {
	fmt.Printf("Acting as %s\n", s.Actor)
	fmt.Printf("Session expires: %s\n", s.ExpiresAt.Format("2006-01-02 15:04:05"))
}
