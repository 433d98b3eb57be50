package battle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mcoot/petbattle/internal/collaborators"
	"github.com/mcoot/petbattle/internal/dependencies/random"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/combat"
)

const (
	// MaxStepsPerRound is how many moves reply MoveMade before the round ends
	MaxStepsPerRound uint8 = 3

	// The delayed UpdateInfo sent when a round ends
	UpdateDelayBlocks uint32 = 500
	UpdateGasLimit    uint64 = 100_000_000
)

// Result is everything a handled message produces besides the new state.
// Effects are only applied once the new state has been committed.
type Result struct {
	Reply         model.Event
	Notifications []model.Notification
	Delayed       []model.DelayedMessage
}

// Machine drives a battle through its states. It mutates the battle it is
// given and never touches storage, so the caller decides whether to commit.
type Machine struct {
	owners     collaborators.OwnerRegistry
	attributes collaborators.AttributeStore
	random     random.Random
	logger     *slog.Logger
}

// NewMachine creates a new Machine
func NewMachine(
	owners collaborators.OwnerRegistry,
	attributes collaborators.AttributeStore,
	random random.Random,
	logger *slog.Logger,
) *Machine {
	return &Machine{
		owners:     owners,
		attributes: attributes,
		random:     random,
		logger:     logger,
	}
}

// Handle applies msg to battle. On error battle may be partially modified
// and must be discarded.
func (m *Machine) Handle(ctx context.Context, battle *model.Battle, msg model.Message) (Result, error) {
	switch msg.Action.Kind {
	case model.ActionKindRegister:
		return m.register(ctx, battle, msg.Action.EntityID)
	case model.ActionKindMove:
		return m.move(battle, msg.Source, msg.Action.Side, msg.Action.Combat)
	case model.ActionKindUpdateInfo:
		return m.updateInfo(ctx, battle, msg.Source)
	case model.ActionKindResetContract:
		return m.resetContract(battle)
	}
	return Result{}, fmt.Errorf("%w: %q", model.ErrUnknownRequest, msg.Action.Kind)
}

// register fetches the entity's owner and attributes, rolls its stats and
// adds it to the battle. The second registration starts the game.
func (m *Machine) register(ctx context.Context, battle *model.Battle, entityID model.ActorID) (Result, error) {
	if battle.State != model.BattleStateRegistration {
		return Result{}, model.ErrWrongState
	}
	if entityID.IsZero() {
		return Result{}, model.ErrInvalidEntity
	}
	if len(battle.Players) >= 2 {
		return Result{}, model.ErrPlayersFull
	}
	if battle.HasEntity(entityID) {
		return Result{}, model.ErrEntityAlreadyRegistered
	}

	owner, err := m.owners.Owner(ctx, entityID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get owner of %s: %w", entityID, err)
	}
	if owner.IsZero() {
		return Result{}, fmt.Errorf("%w: %s has no owner", model.ErrUnexpectedReply, entityID)
	}

	attrs, err := m.attributes.Attributes(ctx, battle.StoreID, entityID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get attributes of %s: %w", entityID, err)
	}

	draw, err := m.derive(battle, "register/"+battle.ProgramID.String()+"/"+entityID.String())
	if err != nil {
		return Result{}, err
	}
	stats := combat.RollStats(draw)

	battle.Players = append(battle.Players, model.Player{
		Owner:      owner,
		EntityID:   entityID,
		Energy:     stats.Energy,
		Power:      stats.Power,
		Attributes: attrs,
		Facing:     stats.Facing,
	})

	if len(battle.Players) == 2 {
		turn, err := m.drawTurn(battle)
		if err != nil {
			return Result{}, err
		}
		battle.CurrentTurn = turn
		battle.Steps = 0
		battle.State = model.BattleStateMoves

		m.logger.Info("battle started",
			slog.String("program_id", battle.ProgramID.String()),
			slog.Int("first_turn", int(turn)),
		)
	}

	m.logger.Info("entity registered",
		slog.String("program_id", battle.ProgramID.String()),
		slog.String("entity_id", entityID.String()),
		slog.String("owner", owner.String()),
		slog.Int("power", int(stats.Power)),
		slog.Int("energy", int(stats.Energy)),
	)

	return Result{Reply: model.Event{Kind: model.EventRegistered, EntityID: entityID}}, nil
}

// move resolves the current player's action against the other player
func (m *Machine) move(battle *model.Battle, source model.ActorID, side model.Side, action model.CombatAction) (Result, error) {
	if battle.State != model.BattleStateMoves {
		return Result{}, model.ErrWrongState
	}

	mover := battle.Mover()
	if mover == nil || mover.Owner != source {
		return Result{}, model.ErrNotYourTurn
	}
	if !side.Valid() {
		return Result{}, model.ErrInvalidSide
	}

	other := battle.OtherTurn()
	out := combat.Resolve(*mover, battle.Players[other], action, side)
	battle.Players[battle.CurrentTurn] = out.Mover
	battle.Players[other] = out.Defender

	var result Result
	if out.Notification != "" {
		result.Notifications = append(result.Notifications, model.Notification{
			Sender:    battle.ProgramID,
			Recipient: source,
			Kind:      out.Notification,
		})
	}

	switch {
	case combat.IsDefeated(out.Defender):
		battle.Winner = out.Mover.EntityID
		battle.Players = []model.Player{}
		battle.State = model.BattleStateGameIsOver
		result.Reply = model.Event{Kind: model.EventGameIsOver}

		m.logger.Info("battle over",
			slog.String("program_id", battle.ProgramID.String()),
			slog.String("winner", battle.Winner.String()),
		)

	case battle.Steps < MaxStepsPerRound:
		battle.Steps++
		battle.CurrentTurn = other
		result.Reply = model.Event{Kind: model.EventMoveMade}

	default:
		battle.Steps = 0
		battle.State = model.BattleStateWaiting
		result.Delayed = append(result.Delayed, model.DelayedMessage{
			Source:      battle.ProgramID,
			Destination: battle.ProgramID,
			Action:      model.UpdateInfoAction(),
			GasLimit:    UpdateGasLimit,
			DelayBlocks: UpdateDelayBlocks,
		})
		result.Reply = model.Event{Kind: model.EventGoToWaitingState}

		m.logger.Info("round over",
			slog.String("program_id", battle.ProgramID.String()),
		)
	}

	return result, nil
}

// updateInfo refreshes both players' attributes and starts the next round.
// Only the program itself may send it.
func (m *Machine) updateInfo(ctx context.Context, battle *model.Battle, source model.ActorID) (Result, error) {
	if source != battle.ProgramID {
		return Result{}, model.ErrNotSelf
	}
	if battle.State != model.BattleStateWaiting {
		return Result{}, model.ErrWrongState
	}

	for i := range battle.Players {
		attrs, err := m.attributes.Attributes(ctx, battle.StoreID, battle.Players[i].EntityID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get attributes of %s: %w", battle.Players[i].EntityID, err)
		}
		battle.Players[i].Attributes = attrs
	}

	turn, err := m.drawTurn(battle)
	if err != nil {
		return Result{}, err
	}
	battle.CurrentTurn = turn
	battle.Steps = 0
	battle.State = model.BattleStateMoves

	return Result{Reply: model.Event{Kind: model.EventInfoUpdated}}, nil
}

// resetContract reopens registration after a finished game
func (m *Machine) resetContract(battle *model.Battle) (Result, error) {
	if battle.State != model.BattleStateGameIsOver {
		return Result{}, model.ErrWrongState
	}

	battle.State = model.BattleStateRegistration
	battle.Players = []model.Player{}

	return Result{Reply: model.Event{Kind: model.EventRestartedContract}}, nil
}

func (m *Machine) drawTurn(battle *model.Battle) (uint8, error) {
	draw, err := m.derive(battle, "turn/"+battle.ProgramID.String())
	if err != nil {
		return 0, err
	}
	return combat.TurnFromDraw(draw), nil
}

// derive takes the next draw for subject. The battle's draw counter is part
// of the subject and is persisted with the battle.
func (m *Machine) derive(battle *model.Battle, subject string) ([random.SeedSize]byte, error) {
	draw, err := m.random.Derive([]byte(subject + "#" + strconv.FormatUint(battle.Draws, 10)))
	if err != nil {
		return draw, err
	}
	battle.Draws++
	return draw, nil
}
