package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.NotificationLimit <= 0 {
		cfg.NotificationLimit = storage.DefaultNotificationLimit
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Battle operations

func (s *Storage) SaveBattle(ctx context.Context, battle *model.Battle) error {
	data, err := json.Marshal(battle)
	if err != nil {
		return err
	}

	// Sessions are never destroyed, so no TTL
	return s.client.Set(ctx, battleKey(battle.ProgramID), data, 0).Err()
}

func (s *Storage) GetBattle(ctx context.Context, programID model.ActorID) (*model.Battle, error) {
	data, err := s.client.Get(ctx, battleKey(programID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBattleNotFound
		}
		return nil, err
	}

	var battle model.Battle
	if err := json.Unmarshal(data, &battle); err != nil {
		return nil, err
	}
	return &battle, nil
}

func (s *Storage) DeleteBattle(ctx context.Context, programID model.ActorID) error {
	return s.client.Del(ctx, battleKey(programID)).Err()
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// SETNX so two claims racing for one address cannot both win
	created, err := s.client.SetNX(ctx, accountKey(account.Address), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrAddressClaimed
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, address model.ActorID) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Notification operations

func (s *Storage) AppendNotification(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	key := notificationsKey(n.Recipient)

	// Push, trim to the newest entries and refresh the TTL together
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.cfg.NotificationLimit), -1)
	if s.cfg.NotificationTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.NotificationTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetNotifications(ctx context.Context, recipient model.ActorID) ([]*model.Notification, error) {
	values, err := s.client.LRange(ctx, notificationsKey(recipient), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	list := make([]*model.Notification, 0, len(values))
	for _, v := range values {
		var n model.Notification
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, nil
}

// Delayed message operations

func (s *Storage) SaveDelayedMessage(ctx context.Context, msg *model.DelayedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, delayedKey(msg.ID), data, 0)
	pipe.ZAdd(ctx, delayedIndexKey(), redis.Z{
		Score:  float64(msg.DueAt.UnixMilli()),
		Member: msg.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteDelayedMessage(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, delayedIndexKey(), id)
	pipe.Del(ctx, delayedKey(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) TakeDueMessages(ctx context.Context, now time.Time) ([]*model.DelayedMessage, error) {
	ids, err := s.client.ZRangeByScore(ctx, delayedIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	due := make([]*model.DelayedMessage, 0, len(ids))
	for _, id := range ids {
		// Whoever removes the index entry owns the message
		removed, err := s.client.ZRem(ctx, delayedIndexKey(), id).Result()
		if err != nil {
			return due, err
		}
		if removed == 0 {
			continue
		}

		data, err := s.client.GetDel(ctx, delayedKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return due, err
		}

		var msg model.DelayedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return due, err
		}
		due = append(due, &msg)
	}
	return due, nil
}

func (s *Storage) PendingMessages(ctx context.Context) ([]*model.DelayedMessage, error) {
	ids, err := s.client.ZRange(ctx, delayedIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.DelayedMessage{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = delayedKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	pending := make([]*model.DelayedMessage, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // Key expired or deleted between ZRANGE and MGET
		}
		var msg model.DelayedMessage
		if err := json.Unmarshal([]byte(str), &msg); err != nil {
			return nil, err
		}
		pending = append(pending, &msg)
	}
	return pending, nil
}
