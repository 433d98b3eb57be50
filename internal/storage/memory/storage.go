package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Battles are copied in and out so callers never share a record.
type Storage struct {
	mu sync.RWMutex

	battles       map[model.ActorID]*model.Battle
	accounts      map[model.ActorID]*model.Account
	notifications map[model.ActorID][]*model.Notification
	delayed       map[string]*model.DelayedMessage

	notificationLimit int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		battles:           make(map[model.ActorID]*model.Battle),
		accounts:          make(map[model.ActorID]*model.Account),
		notifications:     make(map[model.ActorID][]*model.Notification),
		delayed:           make(map[string]*model.DelayedMessage),
		notificationLimit: storage.DefaultNotificationLimit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Battle operations

func (s *Storage) SaveBattle(ctx context.Context, battle *model.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battles[battle.ProgramID] = battle.Clone()
	return nil
}

func (s *Storage) GetBattle(ctx context.Context, programID model.ActorID) (*model.Battle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	battle, ok := s.battles[programID]
	if !ok {
		return nil, model.ErrBattleNotFound
	}
	return battle.Clone(), nil
}

func (s *Storage) DeleteBattle(ctx context.Context, programID model.ActorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.battles, programID)
	return nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Address]; ok {
		return model.ErrAddressClaimed
	}
	copied := *account
	s.accounts[account.Address] = &copied
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, address model.ActorID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[address]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// Notification operations

func (s *Storage) AppendNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *n
	list := append(s.notifications[n.Recipient], &copied)
	if len(list) > s.notificationLimit {
		list = list[len(list)-s.notificationLimit:]
	}
	s.notifications[n.Recipient] = list
	return nil
}

func (s *Storage) GetNotifications(ctx context.Context, recipient model.ActorID) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notifications[recipient]
	result := make([]*model.Notification, len(list))
	for i, n := range list {
		copied := *n
		result[i] = &copied
	}
	return result, nil
}

// Delayed message operations

func (s *Storage) SaveDelayedMessage(ctx context.Context, msg *model.DelayedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *msg
	s.delayed[msg.ID] = &copied
	return nil
}

func (s *Storage) DeleteDelayedMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.delayed, id)
	return nil
}

func (s *Storage) TakeDueMessages(ctx context.Context, now time.Time) ([]*model.DelayedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := []*model.DelayedMessage{}
	for id, msg := range s.delayed {
		if !msg.DueAt.After(now) {
			due = append(due, msg)
			delete(s.delayed, id)
		}
	}
	sortByDueAt(due)
	return due, nil
}

func (s *Storage) PendingMessages(ctx context.Context) ([]*model.DelayedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]*model.DelayedMessage, 0, len(s.delayed))
	for _, msg := range s.delayed {
		copied := *msg
		pending = append(pending, &copied)
	}
	sortByDueAt(pending)
	return pending, nil
}

func sortByDueAt(msgs []*model.DelayedMessage) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].DueAt.Equal(msgs[j].DueAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].DueAt.Before(msgs[j].DueAt)
	})
}
