package session_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

const keyPrefix = "ava:"

// RedisStore сессии в Redis: JSON сессии, индекс по лиду и список событий.
// Все ключи сессии продлеваются на ttl при каждой записи.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// NewRedisClient разбирает REDIS_URL и проверяет соединение
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func sessionKey(id string) string  { return keyPrefix + "session:" + id }
func leadKey(leadID string) string { return keyPrefix + "lead:" + leadID }
func logsKey(id string) string     { return keyPrefix + "logs:" + id }

func (s *RedisStore) Save(ctx context.Context, sess domain.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.ID), payload, s.ttl)
		pipe.Set(ctx, leadKey(sess.LeadID), sess.ID, s.ttl)
		if s.ttl > 0 {
			pipe.Expire(ctx, logsKey(sess.ID), s.ttl)
		}
		return nil
	})
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to save session", err, port.Fields{
			"component":  "RedisSessionStore",
			"session_id": sess.ID,
		})
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) FindByLead(ctx context.Context, leadID string) (*domain.Session, error) {
	id, err := s.rdb.Get(ctx, leadKey(leadID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session by lead: %w", err)
	}

	sess, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	return sess, err
}

func (s *RedisStore) exists(ctx context.Context, id string) error {
	n, err := s.rdb.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) AppendLog(ctx context.Context, id string, entry domain.LogEntry) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, logsKey(id), payload)
		if s.ttl > 0 {
			pipe.Expire(ctx, sessionKey(id), s.ttl)
			pipe.Expire(ctx, leadKey(sess.LeadID), s.ttl)
			pipe.Expire(ctx, logsKey(id), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Logs(ctx context.Context, id string) ([]domain.LogEntry, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}

	raw, err := s.rdb.LRange(ctx, logsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session logs: %w", err)
	}

	out := make([]domain.LogEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.LogEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to decode log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
