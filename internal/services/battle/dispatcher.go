package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/petbattle/internal/dependencies/clock"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// Scheduler accepts delayed messages for later delivery
type Scheduler interface {
	Schedule(ctx context.Context, msg model.DelayedMessage) (*model.DelayedMessage, error)
	Cancel(ctx context.Context, id string) error
}

type outcome struct {
	event model.Event
	err   error
}

type envelope struct {
	ctx   context.Context
	op    func(ctx context.Context) (model.Event, error)
	reply chan outcome
}

// Dispatcher hosts one battle program. A single worker drains the mailbox,
// so at most one request is in flight. Each request runs against a copy of
// the stored battle and is committed only if it succeeds.
type Dispatcher struct {
	programID model.ActorID
	storage   storage.Storage
	machine   *Machine
	scheduler Scheduler
	clock     clock.Clock
	logger    *slog.Logger

	mailbox chan envelope
	quit    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher creates a dispatcher for programID. Call Start before use.
func NewDispatcher(
	programID model.ActorID,
	storage storage.Storage,
	machine *Machine,
	scheduler Scheduler,
	clock clock.Clock,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		programID: programID,
		storage:   storage,
		machine:   machine,
		scheduler: scheduler,
		clock:     clock,
		logger:    logger,
		mailbox:   make(chan envelope),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// ProgramID returns the address of the hosted program
func (d *Dispatcher) ProgramID() model.ActorID {
	return d.programID
}

// Start launches the worker
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Stop waits for the in-flight request to finish and stops the worker.
// Queued requests fail with ErrProgramStopped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
	})
	d.startOnce.Do(func() {
		close(d.stopped)
	})
	<-d.stopped
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for {
		select {
		case env := <-d.mailbox:
			event, err := env.op(context.WithoutCancel(env.ctx))
			env.reply <- outcome{event: event, err: err}
		case <-d.quit:
			return
		}
	}
}

// submit queues op and waits for its outcome. Once queued, op runs to
// completion even if ctx is cancelled.
func (d *Dispatcher) submit(ctx context.Context, op func(ctx context.Context) (model.Event, error)) (model.Event, error) {
	env := envelope{ctx: ctx, op: op, reply: make(chan outcome, 1)}

	select {
	case d.mailbox <- env:
	case <-d.quit:
		return model.Event{}, model.ErrProgramStopped
	case <-ctx.Done():
		return model.Event{}, ctx.Err()
	}

	select {
	case out := <-env.reply:
		return out.event, out.err
	case <-ctx.Done():
		return model.Event{}, ctx.Err()
	}
}

// Init creates the battle record for this program
func (d *Dispatcher) Init(ctx context.Context, storeID model.ActorID) (*model.Battle, error) {
	var created *model.Battle
	_, err := d.submit(ctx, func(ctx context.Context) (model.Event, error) {
		_, err := d.storage.GetBattle(ctx, d.programID)
		if err == nil {
			return model.Event{}, model.ErrAlreadyInitialized
		}
		if !errors.Is(err, model.ErrBattleNotFound) {
			return model.Event{}, err
		}

		battle := model.NewBattle(d.programID, storeID, d.clock.Now())
		if err := d.storage.SaveBattle(ctx, battle); err != nil {
			return model.Event{}, err
		}
		created = battle

		d.logger.Info("battle initialized",
			slog.String("program_id", d.programID.String()),
			slog.String("store_id", storeID.String()),
		)
		return model.Event{}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Send delivers msg to the program and returns its reply
func (d *Dispatcher) Send(ctx context.Context, msg model.Message) (model.Event, error) {
	return d.submit(ctx, func(ctx context.Context) (model.Event, error) {
		return d.handle(ctx, msg)
	})
}

// State returns the committed battle record
func (d *Dispatcher) State(ctx context.Context) (*model.Battle, error) {
	return d.storage.GetBattle(ctx, d.programID)
}

func (d *Dispatcher) handle(ctx context.Context, msg model.Message) (model.Event, error) {
	stored, err := d.storage.GetBattle(ctx, d.programID)
	if err != nil {
		return model.Event{}, err
	}

	working := stored.Clone()
	result, err := d.machine.Handle(ctx, working, msg)
	if err != nil {
		d.logger.Warn("request rejected",
			slog.String("program_id", d.programID.String()),
			slog.String("source", msg.Source.String()),
			slog.String("action", string(msg.Action.Kind)),
			slog.String("error", err.Error()),
		)
		return model.Event{}, err
	}

	// Delayed messages are part of the transition: if one cannot be
	// scheduled, nothing is committed.
	scheduled, err := d.schedule(ctx, result.Delayed)
	if err != nil {
		return model.Event{}, err
	}

	working.UpdatedAt = d.clock.Now()
	if err := d.storage.SaveBattle(ctx, working); err != nil {
		d.logger.Error("failed to save battle",
			slog.String("program_id", d.programID.String()),
			slog.String("error", err.Error()),
		)
		d.cancel(ctx, scheduled)
		return model.Event{}, err
	}

	for _, msg := range scheduled {
		d.logger.Info("message scheduled",
			slog.String("id", msg.ID),
			slog.String("action", string(msg.Action.Kind)),
			slog.Time("due_at", msg.DueAt),
		)
	}

	d.notify(ctx, result.Notifications)
	return result.Reply, nil
}

// schedule stores every delayed message, undoing the ones already stored
// if any fails
func (d *Dispatcher) schedule(ctx context.Context, delayed []model.DelayedMessage) ([]*model.DelayedMessage, error) {
	scheduled := make([]*model.DelayedMessage, 0, len(delayed))
	for _, msg := range delayed {
		stored, err := d.scheduler.Schedule(ctx, msg)
		if err != nil {
			d.logger.Error("failed to schedule message",
				slog.String("program_id", d.programID.String()),
				slog.String("destination", msg.Destination.String()),
				slog.String("action", string(msg.Action.Kind)),
				slog.String("error", err.Error()),
			)
			d.cancel(ctx, scheduled)
			return nil, fmt.Errorf("failed to schedule %s: %w", msg.Action.Kind, err)
		}
		scheduled = append(scheduled, stored)
	}
	return scheduled, nil
}

func (d *Dispatcher) cancel(ctx context.Context, scheduled []*model.DelayedMessage) {
	for _, msg := range scheduled {
		if err := d.scheduler.Cancel(ctx, msg.ID); err != nil {
			d.logger.Error("failed to cancel scheduled message",
				slog.String("id", msg.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// notify delivers notifications. This is best effort: the new state is
// already committed.
func (d *Dispatcher) notify(ctx context.Context, notifications []model.Notification) {
	now := d.clock.Now()
	for _, n := range notifications {
		n.CreatedAt = now
		if err := d.storage.AppendNotification(ctx, &n); err != nil {
			d.logger.Error("failed to send notification",
				slog.String("recipient", n.Recipient.String()),
				slog.String("kind", string(n.Kind)),
				slog.String("error", err.Error()),
			)
		}
	}
}
