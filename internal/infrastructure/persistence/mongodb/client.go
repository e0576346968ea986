package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// 컬렉션 이름
const (
	CollectionTours    = "tours"
	CollectionReviews  = "reviews"
	CollectionUsers    = "users"
	CollectionBookings = "bookings"
)

// Config는 MongoDB 설정입니다
type Config struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	MaxConnecting  uint64
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// Client는 MongoDB 연결입니다
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient는 MongoDB에 연결하고 Primary ping으로 연결을 확인합니다
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnecting(cfg.MaxConnecting).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetTimeout(cfg.Timeout).
		SetReadPreference(readpref.Primary())

	if cfg.Username != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// 연결 확인
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "connected to MongoDB",
		logger.Field("database", cfg.Database),
		logger.Field("max_pool_size", cfg.MaxPoolSize),
	)

	return &Client{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Database는 애플리케이션 데이터베이스를 반환합니다
func (c *Client) Database() *mongo.Database {
	return c.database
}

// HealthCheck는 Primary 연결 상태를 확인합니다
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close는 연결을 종료합니다
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}
