package kv

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/markazhub/markaz/core"
)

// redisStore keeps blobs in redis so several app instances share sessions.
type redisStore struct {
	client *redis.Client
}

var _ Store = (*redisStore)(nil)

func NewRedisStore(conf *core.Config) *redisStore {
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}),
	}
}

func (s *redisStore) Get(key string) ([]byte, error) {
	data, err := s.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *redisStore) Set(key string, value []byte) error {
	return s.client.Set(context.Background(), key, value, 0).Err()
}

func (s *redisStore) Delete(key string) error {
	return s.client.Del(context.Background(), key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
