package vault

import (
	"fmt"
	"time"
)

// Config는 Vault 클라이언트 설정입니다
type Config struct {
	// Vault 서버 주소
	Address string

	// 인증 토큰
	Token string

	// 인증 방법 (token, approle, kubernetes)
	AuthMethod string

	// AppRole 설정
	RoleID   string
	SecretID string

	// Kubernetes 설정
	K8sRole string

	// 네임스페이스
	Namespace string

	// 정적 시크릿 경로 (KV v2)
	SecretsPath string

	// 요청 타임아웃
	Timeout time.Duration

	// 캐시 설정
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig는 기본 Vault 설정을 반환합니다
func DefaultConfig() *Config {
	return &Config{
		Address:      "http://localhost:8200",
		AuthMethod:   "token",
		SecretsPath:  "secret/data/tour-service",
		Timeout:      10 * time.Second,
		CacheEnabled: true,
		CacheTTL:     5 * time.Minute,
	}
}

// Validate는 설정을 검증합니다
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("vault address is required")
	}

	switch c.AuthMethod {
	case "token":
		if c.Token == "" {
			return fmt.Errorf("vault token is required for token auth")
		}
	case "approle":
		if c.RoleID == "" || c.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth")
		}
	case "kubernetes":
		if c.K8sRole == "" {
			return fmt.Errorf("kubernetes role is required for kubernetes auth")
		}
	default:
		return fmt.Errorf("unsupported auth method: %s", c.AuthMethod)
	}

	if c.SecretsPath == "" {
		return fmt.Errorf("vault secrets path is required")
	}

	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}

	return nil
}

// SecretMetadata는 시크릿 메타데이터입니다
type SecretMetadata struct {
	LeaseID       string
	LeaseDuration int
	Renewable     bool
	Data          map[string]interface{}
	CreatedAt     time.Time
}

// IsExpired는 캐시된 시크릿이 ttl을 지났는지 확인합니다
// 리스 기간이 있으면 리스 기간을 우선합니다
func (s *SecretMetadata) IsExpired(ttl time.Duration) bool {
	if s.LeaseDuration > 0 {
		ttl = time.Duration(s.LeaseDuration) * time.Second
	}
	if ttl <= 0 {
		return false
	}
	return time.Now().After(s.CreatedAt.Add(ttl))
}
