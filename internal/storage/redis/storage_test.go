package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/petbattle/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.NotificationLimit = 3
	cfg.NotificationTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Battle tests

func (s *StorageSuite) TestSaveAndGetBattle() {
	battle := model.NewBattle("program-1", "store-1", s.now)
	battle.State = model.BattleStateMoves
	battle.CurrentTurn = 1
	battle.Steps = 2
	battle.Players = []model.Player{
		{Owner: "alice", EntityID: "pet-1", Energy: 9000, Power: 6000, Attributes: model.NewAttributeSet(1, 3), Facing: model.SideLeft},
		{Owner: "bob", EntityID: "pet-2", Energy: 12000, Power: 5000, Facing: model.SideRight},
	}

	err := s.storage.SaveBattle(s.ctx, battle)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetBattle(s.ctx, "program-1")
	s.Require().NoError(err)
	s.Equal(battle.ProgramID, retrieved.ProgramID)
	s.Equal(battle.StoreID, retrieved.StoreID)
	s.Equal(battle.State, retrieved.State)
	s.Equal(battle.CurrentTurn, retrieved.CurrentTurn)
	s.Equal(battle.Steps, retrieved.Steps)
	s.Equal(battle.Players, retrieved.Players)
	s.True(battle.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestBattleHasNoTTL() {
	_ = s.storage.SaveBattle(s.ctx, model.NewBattle("program-1", "store-1", s.now))

	s.Equal(time.Duration(0), s.mini.TTL(battleKey("program-1")))
}

func (s *StorageSuite) TestGetBattleNotFound() {
	_, err := s.storage.GetBattle(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrBattleNotFound)
}

func (s *StorageSuite) TestDeleteBattle() {
	_ = s.storage.SaveBattle(s.ctx, model.NewBattle("program-1", "store-1", s.now))

	err := s.storage.DeleteBattle(s.ctx, "program-1")
	s.Require().NoError(err)

	_, err = s.storage.GetBattle(s.ctx, "program-1")
	s.ErrorIs(err, model.ErrBattleNotFound)
}

// Notification tests

func (s *StorageSuite) TestNotificationsTrimmedToLimit() {
	kinds := []model.EventKind{
		model.EventAttackMissed,
		model.EventSuccessfullyAttacked,
		model.EventSuccessfullyDefended,
		model.EventAttackMissed,
	}
	for _, k := range kinds {
		err := s.storage.AppendNotification(s.ctx, &model.Notification{Sender: "program-1", Recipient: "alice", Kind: k})
		s.Require().NoError(err)
	}

	list, err := s.storage.GetNotifications(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(model.EventSuccessfullyAttacked, list[0].Kind)
	s.Equal(model.EventAttackMissed, list[2].Kind)
}

func (s *StorageSuite) TestNotificationsHaveTTL() {
	_ = s.storage.AppendNotification(s.ctx, &model.Notification{Recipient: "alice", Kind: model.EventAttackMissed})

	s.Equal(time.Hour, s.mini.TTL(notificationsKey("alice")))
}

func (s *StorageSuite) TestGetNotificationsEmpty() {
	list, err := s.storage.GetNotifications(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(list)
}

// Delayed message tests

func (s *StorageSuite) delayed(id string, due time.Time) *model.DelayedMessage {
	return &model.DelayedMessage{
		ID:          id,
		Source:      "program-1",
		Destination: "program-1",
		Action:      model.UpdateInfoAction(),
		GasLimit:    100_000_000,
		DelayBlocks: 500,
		DueAt:       due,
	}
}

func (s *StorageSuite) TestTakeDueMessages() {
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("late", s.now.Add(time.Minute)))
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("second", s.now))
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("first", s.now.Add(-time.Minute)))

	due, err := s.storage.TakeDueMessages(s.ctx, s.now)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Equal("first", due[0].ID)
	s.Equal("second", due[1].ID)
	s.Equal(model.ActionKindUpdateInfo, due[0].Action.Kind)
	s.Equal(uint64(100_000_000), due[0].GasLimit)

	// Taken messages are gone
	s.False(s.mini.Exists(delayedKey("first")))

	pending, err := s.storage.PendingMessages(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("late", pending[0].ID)
}

func (s *StorageSuite) TestTakeDueMessagesOnlyOnce() {
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("msg", s.now))

	first, err := s.storage.TakeDueMessages(s.ctx, s.now)
	s.Require().NoError(err)
	second, err := s.storage.TakeDueMessages(s.ctx, s.now)
	s.Require().NoError(err)

	s.Len(first, 1)
	s.Empty(second)
}

func (s *StorageSuite) TestPendingMessagesEmpty() {
	pending, err := s.storage.PendingMessages(s.ctx)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *StorageSuite) TestDeleteDelayedMessage() {
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("keep", s.now))
	_ = s.storage.SaveDelayedMessage(s.ctx, s.delayed("drop", s.now))

	s.Require().NoError(s.storage.DeleteDelayedMessage(s.ctx, "drop"))
	s.False(s.mini.Exists(delayedKey("drop")))

	pending, err := s.storage.PendingMessages(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("keep", pending[0].ID)
}

func (s *StorageSuite) TestSaveDelayedMessageAgainReschedules() {
	msg := s.delayed("msg", s.now)
	_ = s.storage.SaveDelayedMessage(s.ctx, msg)

	taken, err := s.storage.TakeDueMessages(s.ctx, s.now)
	s.Require().NoError(err)
	s.Require().Len(taken, 1)

	taken[0].DueAt = s.now.Add(time.Minute)
	taken[0].Attempts = 1
	s.Require().NoError(s.storage.SaveDelayedMessage(s.ctx, taken[0]))

	due, err := s.storage.TakeDueMessages(s.ctx, s.now)
	s.Require().NoError(err)
	s.Empty(due)

	due, err = s.storage.TakeDueMessages(s.ctx, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal(1, due[0].Attempts)
}

// Account tests

func (s *StorageSuite) TestCreateAndGetAccount() {
	account := &model.Account{Address: "alice", SecretHash: "hash", CreatedAt: s.now}
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))
	s.True(s.mini.Exists(accountKey("alice")))

	got, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ActorID("alice"), got.Address)
	s.Equal("hash", got.SecretHash)
	s.True(s.now.Equal(got.CreatedAt))
}

func (s *StorageSuite) TestCreateAccountTwiceFails() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.Account{Address: "alice", SecretHash: "one"}))

	err := s.storage.CreateAccount(s.ctx, &model.Account{Address: "alice", SecretHash: "two"})
	s.ErrorIs(err, model.ErrAddressClaimed)

	got, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("one", got.SecretHash)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}
