package mongodb

import (
	"context"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	activeUsers = bson.M{"active": bson.M{"$ne": false}}
	publicTours = bson.M{"secretTour": bson.M{"$ne": true}}

	guideProjection  = bson.M{"name": 1, "email": 1, "photo": 1, "role": 1}
	authorProjection = bson.M{"name": 1, "photo": 1}
	tourProjection   = bson.M{"name": 1, "slug": 1, "imageCover": 1, "price": 1}
)

// loadByIDs는 ID 목록에 해당하는 요약 문서를 한 번의 $in 조회로 읽습니다
func loadByIDs[S any](ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID, base, projection bson.M, idOf func(*S) primitive.ObjectID) (map[primitive.ObjectID]*S, error) {
	out := make(map[primitive.ObjectID]*S, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	filter := mergeFilters(base, bson.M{"_id": bson.M{"$in": uniqueIDs(ids)}})
	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		doc := new(S)
		if err := cursor.Decode(doc); err != nil {
			return nil, err
		}
		out[idOf(doc)] = doc
	}
	return out, cursor.Err()
}

func loadUsers(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID, projection bson.M) (map[primitive.ObjectID]*entity.UserSummary, error) {
	return loadByIDs(ctx, db.Collection(CollectionUsers), ids, activeUsers, projection,
		func(u *entity.UserSummary) primitive.ObjectID { return u.ID })
}

func loadTours(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.TourSummary, error) {
	return loadByIDs(ctx, db.Collection(CollectionTours), ids, nil, tourProjection,
		func(t *entity.TourSummary) primitive.ObjectID { return t.ID })
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
