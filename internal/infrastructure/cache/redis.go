package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// NewClient는 설정으로 Redis 클라이언트를 생성하고 연결을 확인합니다
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Store는 Redis 기반 JSON 캐시입니다
type Store struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Metrics
}

var _ repository.CacheRepository = (*Store)(nil)

// NewStore는 새로운 캐시 저장소를 생성합니다. 모든 키에 prefix가 붙습니다
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		client:  client,
		prefix:  prefix,
		metrics: metrics.GetMetrics(),
	}
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get은 캐시에서 값을 읽어 dest에 역직렬화합니다
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.metrics.RecordCacheMiss(s.prefix)
		logger.LogCacheOperation(ctx, "get", key, false, nil)
		return false, nil
	}
	if err != nil {
		logger.LogCacheOperation(ctx, "get", key, false, err)
		return false, fmt.Errorf("failed to get value: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}

	s.metrics.RecordCacheHit(s.prefix)
	logger.LogCacheOperation(ctx, "get", key, true, nil)
	return true, nil
}

// Set은 값을 JSON으로 직렬화하여 저장합니다. ttl이 0이면 만료되지 않습니다
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	err = s.client.Set(ctx, s.key(key), data, ttl).Err()
	logger.LogCacheOperation(ctx, "set", key, false, err)
	if err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete는 키들을 삭제합니다
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}

	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Ping은 Redis 연결 상태를 확인합니다
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
