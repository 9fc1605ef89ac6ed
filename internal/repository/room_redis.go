package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const (
	roomKeyPrefix   = "room:"
	joinableRoomKey = "rooms:joinable"

	maxTxRetries = 10
)

type dbRoom struct {
	client *redis.Client
}

func NewRedisRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	created, err := that.client.SetNX(ctx, roomKey(room.ID), roomJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}
	if !created {
		return fmt.Errorf("room %s already exists", room.ID)
	}

	if !room.IsFull() {
		if err = that.client.SAdd(ctx, joinableRoomKey, room.ID).Err(); err != nil {
			return fmt.Errorf("failed to index joinable room: %w", err)
		}
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal(response, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// Update runs fn inside WATCH/MULTI and retries with backoff when another
// writer touched the room in between.
func (that *dbRoom) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	key := roomKey(id)

	var updated *entity.Room
	txFn := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get room by id: %w", err)
		}

		var room entity.Room
		if err = json.Unmarshal(response, &room); err != nil {
			return fmt.Errorf("failed to unmarshal room: %w", err)
		}

		if err = fn(&room); err != nil {
			return err
		}

		roomJSON, err := json.Marshal(&room)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, roomJSON, 0)
			if room.IsFull() {
				pipe.SRem(ctx, joinableRoomKey, id)
			} else {
				pipe.SAdd(ctx, joinableRoomKey, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		updated = &room

		return nil
	}

	operation := func() error {
		err := that.client.Watch(ctx, txFn, key)
		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 100 * time.Millisecond

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxTxRetries), ctx)); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("room %s kept changing during update: %w", id, err)
		}
		return nil, err
	}

	return updated, nil
}

func (that *dbRoom) ListJoinable(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.SMembers(ctx, joinableRoomKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(ids))
	if len(ids) == 0 {
		return rooms, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, roomKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load joinable rooms: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}

		if !room.IsFull() {
			rooms = append(rooms, &room)
		}
	}

	return rooms, nil
}
