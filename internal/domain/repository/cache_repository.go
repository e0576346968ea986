package repository

import (
	"context"
	"time"
)

// CacheRepository는 캐시 저장소 인터페이스입니다
type CacheRepository interface {
	// Get은 키의 값을 dest에 JSON 역직렬화합니다
	// 키가 없으면 found=false입니다
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set은 값을 JSON으로 직렬화하여 ttl 동안 저장합니다
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete는 키들을 삭제합니다
	Delete(ctx context.Context, keys ...string) error

	// Ping은 연결 상태를 확인합니다
	Ping(ctx context.Context) error
}

// RateLimiter는 고정 윈도우 요청 제한 인터페이스입니다
type RateLimiter interface {
	// Allow는 key의 요청을 허용하는지와 남은 요청 수를 반환합니다
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (allowed bool, remaining int64, err error)
}
