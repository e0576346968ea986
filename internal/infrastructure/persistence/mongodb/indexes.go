package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// indexSpecs는 컬렉션별로 유지해야 하는 인덱스입니다
func indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionTours: {
			{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
		},
		CollectionReviews: {
			{Keys: bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "passwordResetToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		CollectionBookings: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "tour", Value: 1}}},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
	}
}

// EnsureIndexes는 모든 컬렉션의 인덱스를 생성합니다
// 이미 존재하는 인덱스는 그대로 유지됩니다
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	m := metrics.GetMetrics()

	for collection, models := range indexSpecs() {
		start := time.Now()

		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			m.RecordDBOperation("create_index", collection, "error", time.Since(start))
			logger.Error(ctx, "failed to create indexes",
				logger.Collection(collection),
				zap.Error(err),
			)
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}

		m.RecordDBOperation("create_index", collection, "success", time.Since(start))
		logger.Info(ctx, "indexes ensured",
			logger.Collection(collection),
			logger.Field("index_names", names),
		)
	}

	return nil
}
