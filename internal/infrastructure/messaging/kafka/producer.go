package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// Producer는 도메인 이벤트를 Kafka로 발행하는 event.Publisher 구현입니다
type Producer struct {
	producer sarama.SyncProducer
	async    sarama.AsyncProducer
	topics   config.KafkaTopics
	done     chan struct{}
}

var _ event.Publisher = (*Producer)(nil)

// NewSaramaConfig는 프로듀서 설정을 sarama 설정으로 변환합니다
func NewSaramaConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Producer.RequiredAcks)
	sc.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	sc.Producer.Retry.Max = cfg.Producer.MaxRetries
	sc.Producer.Retry.Backoff = cfg.Producer.RetryBackoff
	sc.Producer.Idempotent = cfg.Producer.EnableIdempotent
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Version = sarama.V3_6_0_0

	if cfg.Producer.EnableIdempotent {
		// idempotent 프로듀서는 acks=all, 연결당 1개 요청이 필요합니다
		sc.Producer.RequiredAcks = sarama.WaitForAll
		sc.Net.MaxOpenRequests = 1
	}

	codec, err := compressionCodec(cfg.Producer.Compression)
	if err != nil {
		return nil, err
	}
	sc.Producer.Compression = codec

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	return sc, nil
}

func compressionCodec(name string) (sarama.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return sarama.CompressionNone, nil
	case "gzip":
		return sarama.CompressionGZIP, nil
	case "snappy":
		return sarama.CompressionSnappy, nil
	case "lz4":
		return sarama.CompressionLZ4, nil
	case "zstd":
		return sarama.CompressionZSTD, nil
	default:
		return sarama.CompressionNone, fmt.Errorf("unknown kafka compression: %s", name)
	}
}

// NewProducer는 새로운 Kafka 프로듀서를 생성합니다
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	sc, err := NewSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Producer.UseAsync {
		async, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
		if err != nil {
			return nil, fmt.Errorf("failed to create async producer: %w", err)
		}
		p := NewAsyncProducer(async, cfg.Topics)
		logInit(cfg)
		return p, nil
	}

	sync, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}
	logInit(cfg)
	return NewSyncProducer(sync, cfg.Topics), nil
}

func logInit(cfg config.KafkaConfig) {
	logger.Info(context.Background(), "kafka producer initialized",
		logger.Field("brokers", cfg.Brokers),
		logger.Field("client_id", cfg.ClientID),
		logger.Field("async", cfg.Producer.UseAsync),
	)
}

// NewSyncProducer는 sarama 동기 프로듀서로 Producer를 생성합니다
func NewSyncProducer(producer sarama.SyncProducer, topics config.KafkaTopics) *Producer {
	return &Producer{producer: producer, topics: topics}
}

// NewAsyncProducer는 sarama 비동기 프로듀서로 Producer를 생성합니다
// 결과 채널은 Close까지 백그라운드에서 소비됩니다
func NewAsyncProducer(async sarama.AsyncProducer, topics config.KafkaTopics) *Producer {
	p := &Producer{async: async, topics: topics, done: make(chan struct{})}
	go p.handleAsyncResults()
	return p
}

// TopicFor는 이벤트 aggregate에 해당하는 토픽을 반환합니다
func (p *Producer) TopicFor(t event.Type) (string, error) {
	var topic string
	switch t.Aggregate() {
	case "user":
		topic = p.topics.Users
	case "review":
		topic = p.topics.Reviews
	case "booking":
		topic = p.topics.Bookings
	case "tour":
		topic = p.topics.Tours
	}
	if topic == "" {
		return "", fmt.Errorf("no topic configured for event %s", t)
	}
	return topic, nil
}

// Publish는 이벤트를 aggregate ID를 키로 발행합니다
func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	topic, err := p.TopicFor(e.Type)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error(ctx, "failed to marshal event",
			logger.Topic(topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(e.AggregateID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: e.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
			{Key: []byte("event_time"), Value: []byte(e.Timestamp.Format(time.RFC3339))},
		},
	}

	if p.async != nil {
		select {
		case p.async.Input() <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
		logger.Debug(ctx, "event sent asynchronously",
			logger.Topic(topic),
			logger.Field("event_type", e.Type),
		)
		return nil
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Error(ctx, "failed to send event",
			logger.Topic(topic),
			logger.Field("event_type", e.Type),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send event: %w", err)
	}

	logger.Debug(ctx, "event published",
		logger.Topic(topic),
		logger.Field("event_type", e.Type),
		logger.Field("partition", partition),
		logger.Field("offset", offset),
	)
	return nil
}

// handleAsyncResults는 비동기 프로듀서의 결과를 처리합니다
func (p *Producer) handleAsyncResults() {
	defer close(p.done)

	successes, errs := p.async.Successes(), p.async.Errors()
	for successes != nil || errs != nil {
		select {
		case success, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			logger.Debug(context.Background(), "async event published",
				logger.Topic(success.Topic),
				logger.Field("partition", success.Partition),
				logger.Field("offset", success.Offset),
			)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error(context.Background(), "async publish failed",
				logger.Topic(err.Msg.Topic),
				zap.Error(err.Err),
			)
		}
	}
}

// Close는 프로듀서를 종료합니다
func (p *Producer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	if p.async != nil {
		err := p.async.Close()
		<-p.done
		return err
	}
	return nil
}

// HealthCheck는 브로커 메타데이터를 조회할 수 있는지 확인하는 함수를 반환합니다
func HealthCheck(cfg config.KafkaConfig) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sc, err := NewSaramaConfig(cfg)
		if err != nil {
			return err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if d := time.Until(deadline); d > 0 {
				sc.Net.DialTimeout = d
			}
		}

		client, err := sarama.NewClient(cfg.Brokers, sc)
		if err != nil {
			return fmt.Errorf("failed to reach kafka brokers: %w", err)
		}
		defer client.Close()

		if len(client.Brokers()) == 0 {
			return fmt.Errorf("no kafka brokers available")
		}
		return nil
	}
}
