package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// GetSecret는 정적 시크릿을 가져옵니다 (KV v2)
func (c *Client) GetSecret(ctx context.Context, path string) (*SecretMetadata, error) {
	if c.config.CacheEnabled {
		if cached := c.getCachedSecret(path); cached != nil {
			logger.Debug(ctx, "secret retrieved from cache",
				logger.Field("path", path),
			)
			return cached, nil
		}
	}

	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		logger.Error(ctx, "failed to read secret",
			logger.Field("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	if secret == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	// KV v2 데이터 추출
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = nested
	}

	metadata := &SecretMetadata{
		LeaseID:       secret.LeaseID,
		LeaseDuration: secret.LeaseDuration,
		Renewable:     secret.Renewable,
		Data:          data,
		CreatedAt:     time.Now(),
	}

	if c.config.CacheEnabled {
		c.cacheSecret(path, metadata)
	}

	logger.Info(ctx, "secret retrieved successfully",
		logger.Field("path", path),
		logger.Count(len(data)),
	)

	return metadata, nil
}

// AppSecrets는 설정된 경로의 시크릿을 문자열 맵으로 반환합니다
// 문자열이 아닌 값은 건너뜁니다
func (c *Client) AppSecrets(ctx context.Context) (map[string]string, error) {
	metadata, err := c.GetSecret(ctx, c.config.SecretsPath)
	if err != nil {
		return nil, err
	}
	return StringValues(metadata.Data), nil
}

// StringValues는 시크릿 데이터에서 문자열 값만 추출합니다
func StringValues(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for key, val := range data {
		if s, ok := val.(string); ok {
			out[key] = s
		}
	}
	return out
}

// getCachedSecret는 만료되지 않은 캐시된 시크릿을 반환합니다
func (c *Client) getCachedSecret(path string) *SecretMetadata {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()

	metadata, ok := c.cache[path]
	if !ok || metadata.IsExpired(c.config.CacheTTL) {
		return nil
	}
	return metadata
}

// cacheSecret는 시크릿을 캐시에 저장합니다
func (c *Client) cacheSecret(path string, metadata *SecretMetadata) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cache[path] = metadata
}
