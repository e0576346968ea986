package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config는 애플리케이션 전체 설정입니다
// 시작 시 한 번 로드되어 생성자에 명시적으로 전달됩니다
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Query         QueryConfig         `mapstructure:"query"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Mail          MailConfig          `mapstructure:"mail"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig는 애플리케이션 기본 설정입니다
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`
}

// IsProduction은 production 환경인지 반환합니다
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// ServerConfig는 서버 설정입니다
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
	GRPC GRPCServerConfig `mapstructure:"grpc"`
}

// HTTPServerConfig는 HTTP 서버 설정입니다
type HTTPServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

// GRPCServerConfig는 gRPC health 서버 설정입니다
type GRPCServerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	ProbeInterval    time.Duration `mapstructure:"probe_interval"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
}

// MongoDBConfig는 MongoDB 설정입니다
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxConnecting  uint64        `mapstructure:"max_connecting"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration `mapstructure:"timeout"`
	EnsureIndexes  bool          `mapstructure:"ensure_indexes"`
}

// RedisConfig는 Redis 설정입니다
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr는 host:port 형식의 주소를 반환합니다
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig는 Kafka 설정입니다
type KafkaConfig struct {
	Enabled  bool                `mapstructure:"enabled"`
	Brokers  []string            `mapstructure:"brokers"`
	ClientID string              `mapstructure:"client_id"`
	Producer KafkaProducerConfig `mapstructure:"producer"`
	Topics   KafkaTopics         `mapstructure:"topics"`
}

// KafkaProducerConfig는 Kafka Producer 설정입니다
type KafkaProducerConfig struct {
	MaxMessageBytes  int           `mapstructure:"max_message_bytes"`
	RequiredAcks     int16         `mapstructure:"required_acks"`
	Compression      string        `mapstructure:"compression"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	EnableIdempotent bool          `mapstructure:"enable_idempotent"`
	UseAsync         bool          `mapstructure:"use_async"`
}

// KafkaTopics는 도메인 이벤트 토픽 설정입니다
type KafkaTopics struct {
	Users    string `mapstructure:"users"`
	Reviews  string `mapstructure:"reviews"`
	Bookings string `mapstructure:"bookings"`
	Tours    string `mapstructure:"tours"`
}

// VaultConfig는 Vault 설정입니다
type VaultConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Address     string        `mapstructure:"address"`
	Token       string        `mapstructure:"token"`
	AuthMethod  string        `mapstructure:"auth_method"`
	RoleID      string        `mapstructure:"role_id"`
	SecretID    string        `mapstructure:"secret_id"`
	K8sRole     string        `mapstructure:"k8s_role"`
	Namespace   string        `mapstructure:"namespace"`
	SecretsPath string        `mapstructure:"secrets_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AuthConfig는 인증 설정입니다
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTExpiresIn    time.Duration `mapstructure:"jwt_expires_in"`
	CookieName      string        `mapstructure:"cookie_name"`
	CookieExpiresIn time.Duration `mapstructure:"cookie_expires_in"`
	ResetTokenTTL   time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost      int           `mapstructure:"bcrypt_cost"`
}

// QueryConfig는 목록 조회 기본값 설정입니다
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// RateLimitConfig는 API 속도 제한 설정입니다
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// CacheConfig는 집계 결과 캐시 설정입니다
type CacheConfig struct {
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
}

// MailConfig는 메일 발송 설정입니다
type MailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	ReplyTo      string `mapstructure:"reply_to"`
}

// StorageConfig는 이미지 저장소(S3 호환) 설정입니다
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	MaxUploadSize   int64  `mapstructure:"max_upload_size"`
	// LocalDir는 S3를 쓰지 않을 때 이미지를 저장하고 정적 파일로 제공하는 디렉터리입니다
	LocalDir        string `mapstructure:"local_dir"`
}

// PaymentConfig는 결제 체크아웃 설정입니다
type PaymentConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	Currency            string `mapstructure:"currency"`
}

// ObservabilityConfig는 관찰성 설정입니다
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig는 로깅 설정입니다
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig는 분산 추적 설정입니다
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// MetricsConfig는 메트릭 설정입니다
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// setDefaults는 모든 설정의 기본값을 등록합니다
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tour-service")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.base_url", "http://localhost:8080")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", 15*time.Second)
	v.SetDefault("server.http.write_timeout", 15*time.Second)
	v.SetDefault("server.http.request_timeout", 10*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.http.max_request_size", 10*1024)
	v.SetDefault("server.http.allowed_origins", []string{"*"})

	v.SetDefault("server.grpc.enabled", false)
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 9090)
	v.SetDefault("server.grpc.probe_interval", 10*time.Second)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "natours")
	v.SetDefault("mongodb.max_pool_size", 100)
	v.SetDefault("mongodb.min_pool_size", 5)
	v.SetDefault("mongodb.max_connecting", 10)
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)
	v.SetDefault("mongodb.timeout", 30*time.Second)
	v.SetDefault("mongodb.ensure_indexes", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.client_id", "tour-service")
	v.SetDefault("kafka.producer.max_message_bytes", 1000000)
	v.SetDefault("kafka.producer.required_acks", 1)
	v.SetDefault("kafka.producer.compression", "snappy")
	v.SetDefault("kafka.producer.max_retries", 3)
	v.SetDefault("kafka.producer.retry_backoff", 100*time.Millisecond)
	v.SetDefault("kafka.topics.users", "tours.users")
	v.SetDefault("kafka.topics.reviews", "tours.reviews")
	v.SetDefault("kafka.topics.bookings", "tours.bookings")
	v.SetDefault("kafka.topics.tours", "tours.tours")

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.auth_method", "token")
	v.SetDefault("vault.secrets_path", "secret/data/tour-service")
	v.SetDefault("vault.timeout", 10*time.Second)

	v.SetDefault("auth.jwt_expires_in", 90*24*time.Hour)
	v.SetDefault("auth.cookie_name", "jwt")
	v.SetDefault("auth.cookie_expires_in", 90*24*time.Hour)
	v.SetDefault("auth.reset_token_ttl", 10*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("query.default_limit", 10)
	v.SetDefault("query.max_limit", 100)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 100)
	v.SetDefault("rate_limit.window", time.Hour)

	v.SetDefault("cache.stats_ttl", time.Minute)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.from", "Natours <hello@natours.io>")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.max_upload_size", 5*1024*1024)
	v.SetDefault("storage.local_dir", "public")

	v.SetDefault("payment.enabled", false)
	v.SetDefault("payment.currency", "usd")

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "console")
	v.SetDefault("observability.tracing.service_name", "tour-service")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.namespace", "tour_service")
	v.SetDefault("observability.metrics.path", "/metrics")
}

// LoadConfig는 설정 파일을 로드합니다
// 설정 파일이 없으면 기본값과 환경변수(APP_ 접두사)만으로 구성합니다
func LoadConfig(configPath string, configName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if configName != "" {
		v.SetConfigName(configName)
	} else {
		v.SetConfigName("config")
	}

	v.SetConfigType("yaml")

	// 환경변수 바인딩
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ApplySecrets는 Vault 등 외부 저장소에서 읽은 시크릿을 설정에 반영합니다
// 알 수 없는 키는 무시합니다
func (c *Config) ApplySecrets(secrets map[string]string) {
	apply := map[string]*string{
		"jwt_secret":            &c.Auth.JWTSecret,
		"mongodb_password":      &c.MongoDB.Password,
		"mongodb_uri":           &c.MongoDB.URI,
		"redis_password":        &c.Redis.Password,
		"resend_api_key":        &c.Mail.ResendAPIKey,
		"stripe_secret_key":     &c.Payment.StripeSecretKey,
		"stripe_webhook_secret": &c.Payment.StripeWebhookSecret,
		"s3_access_key_id":      &c.Storage.AccessKeyID,
		"s3_secret_access_key":  &c.Storage.SecretAccessKey,
	}

	for key, target := range apply {
		if val, ok := secrets[key]; ok && val != "" {
			*target = val
		}
	}
}

// Validate는 설정을 검증합니다
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("server.http.port must be positive")
	}

	if c.Server.GRPC.Enabled && c.Server.GRPC.Port <= 0 {
		return fmt.Errorf("server.grpc.port must be positive")
	}

	if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		return fmt.Errorf("mongodb.uri and mongodb.database are required")
	}

	if c.Query.DefaultLimit <= 0 || c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("query.default_limit must be positive and not exceed query.max_limit")
	}

	if c.Auth.JWTExpiresIn <= 0 {
		return fmt.Errorf("auth.jwt_expires_in must be positive")
	}

	// Vault를 쓰는 경우 jwt_secret은 시작 시 ApplySecrets 이후 검증합니다
	if !c.Vault.Enabled && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}

	if c.Vault.Enabled {
		if c.Vault.Address == "" {
			return fmt.Errorf("vault.address is required")
		}
		if c.Vault.AuthMethod == "token" && c.Vault.Token == "" {
			return fmt.Errorf("vault.token is required for token auth")
		}
	}

	if c.Mail.Enabled && c.Mail.ResendAPIKey == "" && !c.Vault.Enabled {
		return fmt.Errorf("mail.resend_api_key is required when mail is enabled")
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.Payment.Enabled && c.Payment.StripeSecretKey == "" && !c.Vault.Enabled {
		return fmt.Errorf("payment.stripe_secret_key is required when payment is enabled")
	}

	return nil
}

// ValidateSecrets는 시크릿 주입 이후 필수 시크릿을 검증합니다
func (c *Config) ValidateSecrets() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	return nil
}
