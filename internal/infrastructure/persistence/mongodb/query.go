package mongodb

import (
	"github.com/YouSangSon/tour-service/internal/domain/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoOperators = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpIn:  "$in",
	query.OpGte: "$gte",
	query.OpGt:  "$gt",
	query.OpLte: "$lte",
	query.OpLt:  "$lt",
}

// buildFilter는 조회 명세의 조건을 bson 필터로 변환합니다
// 단일 동등 조건은 값 그대로, 그 외에는 연산자 문서로 변환합니다
func buildFilter(spec *query.Spec) bson.M {
	filter := bson.M{}
	if spec == nil {
		return filter
	}

	for _, field := range spec.Fields() {
		conds := spec.ConditionsFor(field)
		if len(conds) == 1 && conds[0].Op == query.OpEq {
			filter[field] = conds[0].Value
			continue
		}

		ops := bson.M{}
		for _, c := range conds {
			ops[mongoOperators[c.Op]] = c.Value
		}
		filter[field] = ops
	}
	return filter
}

// mergeFilters는 기본 필터와 요청 필터를 합칩니다
// 같은 필드가 양쪽에 있으면 $and로 묶습니다
func mergeFilters(base, filter bson.M) bson.M {
	if len(base) == 0 {
		return filter
	}
	if len(filter) == 0 {
		return copyFilter(base)
	}

	for key := range filter {
		if _, overlap := base[key]; overlap {
			return bson.M{"$and": bson.A{base, filter}}
		}
	}

	out := copyFilter(base)
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func copyFilter(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// buildSort는 정렬 키를 bson.D로 변환합니다
func buildSort(keys []query.SortKey) bson.D {
	sort := make(bson.D, 0, len(keys))
	for _, k := range keys {
		sort = append(sort, bson.E{Key: k.Field, Value: int(k.Direction)})
	}
	return sort
}

// buildProjection은 필드 선택을 bson 프로젝션으로 변환합니다
func buildProjection(p query.Projection) bson.M {
	projection := bson.M{}
	if len(p.Include) > 0 {
		for _, f := range p.Include {
			projection[f] = 1
		}
		return projection
	}
	for _, f := range p.Exclude {
		projection[f] = 0
	}
	return projection
}

// findOptions는 명세의 정렬, 프로젝션, 페이지를 FindOptions로 변환합니다
func findOptions(spec *query.Spec) *options.FindOptions {
	opts := options.Find()
	if spec == nil {
		return opts
	}

	if len(spec.Sort) > 0 {
		opts.SetSort(buildSort(spec.Sort))
	}
	if projection := buildProjection(spec.Projection); len(projection) > 0 {
		opts.SetProjection(projection)
	}
	if spec.Skip > 0 {
		opts.SetSkip(int64(spec.Skip))
	}
	if spec.Limit > 0 {
		opts.SetLimit(int64(spec.Limit))
	}
	return opts
}
