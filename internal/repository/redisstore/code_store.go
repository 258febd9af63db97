// Package redisstore implements the verification code store on Redis.
//
// Key namespace: img_<challenge_id>, sms_<mobile>, send_flag_<mobile>.
package redisstore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
)

type CodeStore struct {
	client *redis.Client
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client}
}

func (s *CodeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *CodeStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Delete is best-effort. A failed delete only risks replay of an
// already-matched code, so the error is logged and swallowed.
func (s *CodeStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("redisstore: delete %s: %v", key, err)
	}
	return nil
}

// PutPipeline writes all entries in one round trip. Redis applies the queued
// commands back to back, so a concurrent reader sees either none or all of
// them.
func (s *CodeStore) PutPipeline(ctx context.Context, entries ...ports.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, e := range entries {
		pipe.Set(ctx, e.Key, e.Value, e.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}
