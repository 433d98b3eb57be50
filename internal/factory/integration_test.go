package factory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
	"github.com/mcoot/petbattle/internal/services/battle"
	"github.com/mcoot/petbattle/internal/services/scheduler"
	redisstorage "github.com/mcoot/petbattle/internal/storage/redis"
	"github.com/mcoot/petbattle/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.app.AddPets()
	s.ctx = context.Background()
	s.Require().NoError(s.app.Start(s.ctx))
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) send(source model.ActorID, action model.Action) model.Event {
	event, err := s.app.Dispatcher.Send(s.ctx, model.Message{Source: source, Action: action})
	s.Require().NoError(err)
	return event
}

func (s *IntegrationSuite) state() *model.Battle {
	b, err := s.app.Dispatcher.State(s.ctx)
	s.Require().NoError(err)
	return b
}

func (s *IntegrationSuite) startBattle() {
	s.app.QueueBattleStart()
	s.send("alice", model.RegisterAction("pet-1"))
	s.send("bob", model.RegisterAction("pet-2"))
	s.Require().Equal(model.BattleStateMoves, s.state().State)
}

// Test: Complete battle from registration to a winner and back
func (s *IntegrationSuite) TestCompleteBattleFlow() {
	s.startBattle()

	// alice hits bob's RIGHT-facing pet for 6000
	event := s.send("alice", model.MoveAction(model.SideRight, model.ActionAttack))
	s.Equal(model.EventMoveMade, event.Kind)
	s.Equal(uint16(6000), s.state().Players[1].Energy)

	// bob hits alice, who now faces RIGHT, for 5000
	event = s.send("bob", model.MoveAction(model.SideRight, model.ActionAttack))
	s.Equal(model.EventMoveMade, event.Kind)
	s.Equal(uint16(4000), s.state().Players[0].Energy)

	// alice finishes bob
	event = s.send("alice", model.MoveAction(model.SideRight, model.ActionAttack))
	s.Equal(model.EventGameIsOver, event.Kind)

	b := s.state()
	s.Equal(model.BattleStateGameIsOver, b.State)
	s.Equal(model.ActorID("pet-1"), b.Winner)
	s.Empty(b.Players)

	notes, err := s.app.Storage.GetNotifications(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(notes, 2)

	// Reset opens registration again
	event = s.send("carol", model.ResetContractAction())
	s.Equal(model.EventRestartedContract, event.Kind)
	s.Equal(model.BattleStateRegistration, s.state().State)

	s.startBattle()
}

// Test: A full round schedules the attribute refresh, which starts the next round
func (s *IntegrationSuite) TestRoundEndsAndResumes() {
	s.startBattle()

	for i := 0; i < 2; i++ {
		s.send("alice", model.MoveAction(model.SideLeft, model.ActionAttack))
		s.send("bob", model.MoveAction(model.SideRight, model.ActionDefend))
	}
	s.Equal(model.BattleStateWaiting, s.state().State)

	pending, err := s.app.Scheduler.Pending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	// Nothing is due before the delay has passed
	delivered, err := s.app.Scheduler.Tick(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, delivered)

	s.Require().NoError(s.app.Registry.SetAttributes("pet-2", 3))
	s.app.MockRandom.QueueCoin(1)
	s.app.MockClock.Advance(time.Duration(battle.UpdateDelayBlocks) * time.Second)

	delivered, err = s.app.Scheduler.Tick(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, delivered)

	b := s.state()
	s.Equal(model.BattleStateMoves, b.State)
	s.Equal(uint8(1), b.CurrentTurn)
	s.Equal(uint8(0), b.Steps)
	s.True(b.Players[1].Attributes.Contains(3))
}

// Test: An attribute store outage during the refresh delays the next round
// instead of losing it
func (s *IntegrationSuite) TestRefreshSurvivesStoreOutage() {
	s.startBattle()
	for i := 0; i < 2; i++ {
		s.send("alice", model.MoveAction(model.SideLeft, model.ActionAttack))
		s.send("bob", model.MoveAction(model.SideRight, model.ActionDefend))
	}
	s.Require().Equal(model.BattleStateWaiting, s.state().State)

	s.app.Registry.Fail(fmt.Errorf("%w: store-1", model.ErrCollaboratorUnavailable))
	s.app.MockClock.Advance(time.Duration(battle.UpdateDelayBlocks) * time.Second)

	delivered, err := s.app.Scheduler.Tick(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, delivered)
	s.Equal(model.BattleStateWaiting, s.state().State)

	pending, err := s.app.Scheduler.Pending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	s.app.Registry.Fail(nil)
	s.app.MockClock.Advance(time.Duration(scheduler.RetryDelayBlocks) * time.Second)

	delivered, err = s.app.Scheduler.Tick(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, delivered)
	s.Equal(model.BattleStateMoves, s.state().State)
}

// Test: Nobody can claim the program's address
func (s *IntegrationSuite) TestProgramAddressCannotBeClaimed() {
	_, err := s.app.Auth.Claim(s.ctx, TestProgramID, TestSecret)
	s.ErrorIs(err, auth.ErrAddressReserved)

	token := s.app.SessionFor("alice")
	session, err := s.app.Auth.ValidateSession(token)
	s.Require().NoError(err)
	s.Equal(model.ActorID("alice"), session.Actor)
}

// Test: Starting again over existing storage resumes the stored battle
func (s *IntegrationSuite) TestRestartResumesBattle() {
	s.startBattle()
	token := s.app.SessionFor("alice")
	s.app.Dispatcher.Stop()

	restarted := newWithDependencies(
		TestProgramID, TestStoreID,
		s.app.Storage, s.app.MockClock, s.app.MockRandom, s.app.Registry, s.app.Registry,
		time.Second, TestAuthConfig(), testutil.NopLogger(),
	)
	s.Require().NoError(restarted.Start(s.ctx))
	defer restarted.Dispatcher.Stop()

	b, err := restarted.Dispatcher.State(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.BattleStateMoves, b.State)
	s.Len(b.Players, 2)

	// Claimed addresses are stored; sessions are not
	_, err = restarted.Auth.ValidateSession(token)
	s.ErrorIs(err, auth.ErrInvalidSession)
	_, err = restarted.Auth.Login(s.ctx, "alice", TestSecret)
	s.NoError(err)
}

type FactorySuite struct {
	suite.Suite
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) TestNewWithMemoryStorage() {
	app, err := New(Config{ProgramID: "battle", StoreID: "store", Devnet: true})
	s.Require().NoError(err)
	defer app.Close()

	s.NotNil(app.Devnet)
	s.Equal(model.ActorID("battle"), app.Dispatcher.ProgramID())
	s.Require().NoError(app.Start(context.Background()))

	b, err := app.Dispatcher.State(context.Background())
	s.Require().NoError(err)
	s.Equal(model.ActorID("store"), b.StoreID)
}

func (s *FactorySuite) TestNewWithRedisStorage() {
	mini := miniredis.RunT(s.T())
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{
		ProgramID:   "battle",
		StoreID:     "store",
		StorageType: StorageTypeRedis,
		RedisConfig: &cfg,
		RandomSeed:  "fixed",
	})
	s.Require().NoError(err)
	defer app.Close()

	s.Nil(app.Devnet)
	s.Require().NoError(app.Start(context.Background()))
	// Starting twice resumes instead of failing
	s.Require().NoError(app.Start(context.Background()))
}

func (s *FactorySuite) TestNewRejectsBadConfig() {
	_, err := New(Config{ProgramID: "battle", StorageType: "postgres"})
	s.Error(err)

	_, err = New(Config{ProgramID: "battle", StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(Config{StorageType: StorageTypeMemory})
	s.Error(err)
}
