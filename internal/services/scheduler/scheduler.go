package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/petbattle/internal/dependencies/clock"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// Deliverer receives messages on behalf of a program
type Deliverer interface {
	Send(ctx context.Context, msg model.Message) (model.Event, error)
}

// RetryDelayBlocks is how long a message waits after a failed delivery
const RetryDelayBlocks uint32 = 10

// rejections are refusals by the program itself. Delivering the same
// message again cannot change them, so the message is dropped.
var rejections = []error{
	model.ErrWrongState,
	model.ErrNotSelf,
	model.ErrNotYourTurn,
	model.ErrUnknownRequest,
	model.ErrInvalidSide,
	model.ErrInvalidEntity,
	model.ErrPlayersFull,
	model.ErrEntityAlreadyRegistered,
}

// Scheduler persists delayed messages and delivers them once due.
// A message the program rejects is logged and dropped. Any other failure,
// such as an unavailable collaborator or a stopped program, puts the
// message back to be tried again RetryDelayBlocks later.
type Scheduler struct {
	storage   storage.Storage
	clock     clock.Clock
	blockTime time.Duration
	logger    *slog.Logger

	mu      sync.RWMutex
	targets map[model.ActorID]Deliverer
}

// New creates a scheduler. blockTime converts delays in blocks to wall time.
func New(storage storage.Storage, clock clock.Clock, blockTime time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		storage:   storage,
		clock:     clock,
		blockTime: blockTime,
		logger:    logger,
		targets:   make(map[model.ActorID]Deliverer),
	}
}

// Register routes messages addressed to address to d
func (s *Scheduler) Register(address model.ActorID, d Deliverer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[address] = d
}

// Schedule stores msg for delivery DelayBlocks from now
func (s *Scheduler) Schedule(ctx context.Context, msg model.DelayedMessage) (*model.DelayedMessage, error) {
	msg.ID = uuid.NewString()
	msg.DueAt = s.clock.Now().Add(clock.BlocksToDuration(msg.DelayBlocks, s.blockTime))

	if err := s.storage.SaveDelayedMessage(ctx, &msg); err != nil {
		return nil, fmt.Errorf("failed to save delayed message: %w", err)
	}
	return &msg, nil
}

// Cancel removes a message that has not been delivered yet
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	return s.storage.DeleteDelayedMessage(ctx, id)
}

// Pending returns the messages not yet delivered, soonest first
func (s *Scheduler) Pending(ctx context.Context) ([]*model.DelayedMessage, error) {
	return s.storage.PendingMessages(ctx)
}

// Tick delivers every message that is due and returns how many were delivered
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	due, err := s.storage.TakeDueMessages(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, msg := range due {
		s.mu.RLock()
		target, ok := s.targets[msg.Destination]
		s.mu.RUnlock()
		if !ok {
			s.drop(msg, fmt.Errorf("%w: %s", model.ErrUnknownActor, msg.Destination))
			continue
		}

		event, err := target.Send(ctx, model.Message{Source: msg.Source, Action: msg.Action})
		if err != nil {
			if isRejection(err) {
				s.drop(msg, err)
			} else {
				s.retry(ctx, msg, err)
			}
			continue
		}

		s.logger.Info("delayed message delivered",
			slog.String("id", msg.ID),
			slog.String("destination", msg.Destination.String()),
			slog.String("reply", string(event.Kind)),
		)
		delivered++
	}
	return delivered, nil
}

func (s *Scheduler) drop(msg *model.DelayedMessage, cause error) {
	s.logger.Warn("delayed message dropped",
		slog.String("id", msg.ID),
		slog.String("destination", msg.Destination.String()),
		slog.String("action", string(msg.Action.Kind)),
		slog.String("error", cause.Error()),
	)
}

// retry stores msg again under the same id. The store outlives a cancelled
// tick, so the message survives shutdown.
func (s *Scheduler) retry(ctx context.Context, msg *model.DelayedMessage, cause error) {
	msg.Attempts++
	msg.DueAt = s.clock.Now().Add(clock.BlocksToDuration(RetryDelayBlocks, s.blockTime))

	if err := s.storage.SaveDelayedMessage(context.WithoutCancel(ctx), msg); err != nil {
		s.logger.Error("failed to reschedule delayed message",
			slog.String("id", msg.ID),
			slog.String("action", string(msg.Action.Kind)),
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Warn("delayed message delivery failed, will retry",
		slog.String("id", msg.ID),
		slog.String("destination", msg.Destination.String()),
		slog.Int("attempts", msg.Attempts),
		slog.Time("due_at", msg.DueAt),
		slog.String("error", cause.Error()),
	)
}

func isRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Run calls Tick every interval until ctx is done
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("scheduler tick failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
