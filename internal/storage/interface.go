package storage

import (
	"context"
	"time"

	"github.com/mcoot/petbattle/internal/model"
)

// DefaultNotificationLimit is how many notifications are kept per actor
const DefaultNotificationLimit = 100

// Storage defines the interface for data persistence
type Storage interface {
	// Battle operations
	SaveBattle(ctx context.Context, battle *model.Battle) error
	GetBattle(ctx context.Context, programID model.ActorID) (*model.Battle, error)
	DeleteBattle(ctx context.Context, programID model.ActorID) error

	// Account operations. CreateAccount fails with ErrAddressClaimed if the
	// address already has an account.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, address model.ActorID) (*model.Account, error)

	// Notification operations. Only the most recent notifications are kept.
	AppendNotification(ctx context.Context, n *model.Notification) error
	GetNotifications(ctx context.Context, recipient model.ActorID) ([]*model.Notification, error)

	// Delayed message operations
	SaveDelayedMessage(ctx context.Context, msg *model.DelayedMessage) error
	DeleteDelayedMessage(ctx context.Context, id string) error
	// TakeDueMessages removes and returns messages due at or before now,
	// ordered by due time. A message is returned by at most one call.
	TakeDueMessages(ctx context.Context, now time.Time) ([]*model.DelayedMessage, error)
	PendingMessages(ctx context.Context) ([]*model.DelayedMessage, error)
}
