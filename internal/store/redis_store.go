package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// alarmsSortedSet is the Redis sorted set backing the single pending
// alarm per room: member is the room code, score is the alarm's unix
// millisecond deadline. Polling it for due members is the same shape as
// playpool's idle_warning/idle_forfeit sorted sets in StartIdleWorker.
const alarmsSortedSet = "dicee:room_alarms"

// RedisStore implements Store against a single Redis instance. Each
// room's keys are prefixed "room:<code>:" so one Redis instance can
// back every room in the process under a private per-room namespace,
// without needing a separate connection per room.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing *redis.Client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Namespace(roomCode string) Namespace {
	return &redisNamespace{client: s.client, roomCode: roomCode}
}

func (s *RedisStore) DueAlarms(ctx context.Context, now time.Time) ([]DueAlarm, error) {
	members, err := s.client.ZRangeByScore(ctx, alarmsSortedSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, err
	}

	due := make([]DueAlarm, 0, len(members))
	for _, roomCode := range members {
		ns := s.Namespace(roomCode)
		_, desc, ok, err := ns.GetAlarm(ctx)
		if err != nil || !ok {
			// Descriptor already consumed/cleared; drop the stale sorted-set entry.
			s.client.ZRem(ctx, alarmsSortedSet, roomCode)
			continue
		}
		due = append(due, DueAlarm{RoomCode: roomCode, Descriptor: desc})
	}
	return due, nil
}

type redisNamespace struct {
	client   *redis.Client
	roomCode string
}

func (n *redisNamespace) key(suffix string) string {
	return fmt.Sprintf("room:%s:%s", n.roomCode, suffix)
}

func (n *redisNamespace) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := n.client.Get(ctx, n.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

func (n *redisNamespace) Put(ctx context.Context, key string, value []byte) error {
	return n.client.Set(ctx, n.key(key), value, 0).Err()
}

func (n *redisNamespace) Delete(ctx context.Context, key string) error {
	return n.client.Del(ctx, n.key(key)).Err()
}

func (n *redisNamespace) SetAlarm(ctx context.Context, at time.Time, descriptor AlarmDescriptor) error {
	data, err := json.Marshal(descriptor)
	if err != nil {
		return err
	}
	if err := n.client.Set(ctx, n.key(KeyAlarmData), data, 0).Err(); err != nil {
		return err
	}
	// ZAdd with the same member overwrites its score, so replacing a
	// pending alarm naturally supersedes the old deadline.
	return n.client.ZAdd(ctx, alarmsSortedSet, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: n.roomCode,
	}).Err()
}

func (n *redisNamespace) DeleteAlarm(ctx context.Context) error {
	if err := n.client.Del(ctx, n.key(KeyAlarmData)).Err(); err != nil {
		return err
	}
	return n.client.ZRem(ctx, alarmsSortedSet, n.roomCode).Err()
}

func (n *redisNamespace) GetAlarm(ctx context.Context) (time.Time, AlarmDescriptor, bool, error) {
	data, err := n.client.Get(ctx, n.key(KeyAlarmData)).Bytes()
	if err == redis.Nil {
		return time.Time{}, AlarmDescriptor{}, false, nil
	}
	if err != nil {
		return time.Time{}, AlarmDescriptor{}, false, err
	}

	var desc AlarmDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return time.Time{}, AlarmDescriptor{}, false, err
	}

	score, err := n.client.ZScore(ctx, alarmsSortedSet, n.roomCode).Result()
	if err == redis.Nil {
		return time.Time{}, AlarmDescriptor{}, false, nil
	}
	if err != nil {
		return time.Time{}, AlarmDescriptor{}, false, err
	}

	return time.UnixMilli(int64(score)), desc, true, nil
}

// RedisAttachmentStore persists connection attachments the same way as
// game-state keys, under a per-connection key.
type RedisAttachmentStore struct {
	client *redis.Client
}

func NewRedisAttachmentStore(client *redis.Client) *RedisAttachmentStore {
	return &RedisAttachmentStore{client: client}
}

func (s *RedisAttachmentStore) Attach(ctx context.Context, connID string, data []byte) error {
	if len(data) > MaxAttachmentBytes {
		return ErrAttachmentTooLarge
	}
	return s.client.Set(ctx, fmt.Sprintf("dicee:conn:%s:attachment", connID), data, 24*time.Hour).Err()
}

func (s *RedisAttachmentStore) ReadAttachment(ctx context.Context, connID string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("dicee:conn:%s:attachment", connID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisAttachmentStore) ForgetAttachment(ctx context.Context, connID string) error {
	return s.client.Del(ctx, fmt.Sprintf("dicee:conn:%s:attachment", connID)).Err()
}
