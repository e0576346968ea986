package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 예약된 쿼리 키는 필터 조건이 되지 않습니다
const (
	KeyPage   = "page"
	KeySort   = "sort"
	KeyLimit  = "limit"
	KeyFields = "fields"
)

var reservedKeys = map[string]struct{}{
	KeyPage:   {},
	KeySort:   {},
	KeyLimit:  {},
	KeyFields: {},
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// FieldType은 쿼리 값 변환에 쓰이는 필드 타입입니다
type FieldType int

const (
	String FieldType = iota
	Number
	Bool
	Time
	ObjectID
)

// Schema는 리소스 필드별 타입입니다
// 스키마에 없는 필드는 문자열 동등 조건으로 전달됩니다
type Schema map[string]FieldType

// Options는 리소스별 Spec 생성 옵션입니다
type Options struct {
	Schema Schema

	// Whitelist의 필드는 같은 키가 여러 번 오면 모든 값을 유지합니다 ($in)
	// 그 외 필드는 마지막 값만 사용합니다
	Whitelist []string

	DefaultLimit   int
	MaxLimit       int
	DefaultSort    []SortKey
	DefaultExclude []string
}

// DefaultOptions는 기본 옵션을 반환합니다
func DefaultOptions() Options {
	return Options{
		DefaultLimit:   DefaultLimit,
		MaxLimit:       MaxLimit,
		DefaultSort:    []SortKey{{Field: "createdAt", Direction: Desc}},
		DefaultExclude: []string{"__v"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = def.DefaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = def.MaxLimit
	}
	if o.DefaultLimit > o.MaxLimit {
		o.DefaultLimit = o.MaxLimit
	}
	if len(o.DefaultSort) == 0 {
		o.DefaultSort = def.DefaultSort
	}
	if o.DefaultExclude == nil {
		o.DefaultExclude = def.DefaultExclude
	}
	return o
}

// Build는 요청 쿼리로부터 Spec을 생성합니다
// 잘못된 입력은 오류 없이 기본값으로 대체됩니다
func Build(values url.Values, opts Options) *Spec {
	opts = opts.withDefaults()

	page := positiveInt(last(values[KeyPage]), DefaultPage)
	limit := positiveInt(last(values[KeyLimit]), opts.DefaultLimit)
	if limit > opts.MaxLimit {
		limit = opts.MaxLimit
	}
	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		page = maxPage
	}

	return &Spec{
		Conditions: buildConditions(values, opts),
		Sort:       buildSort(last(values[KeySort]), opts.DefaultSort),
		Projection: buildProjection(last(values[KeyFields]), opts.DefaultExclude),
		Page:       page,
		Limit:      limit,
		Skip:       (page - 1) * limit,
	}
}

func buildConditions(values url.Values, opts Options) []Condition {
	whitelist := make(map[string]struct{}, len(opts.Whitelist))
	for _, f := range opts.Whitelist {
		whitelist[f] = struct{}{}
	}

	conditions := make([]Condition, 0, len(values))
	for _, key := range sortedKeys(values) {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		raw := values[key]
		if len(raw) == 0 {
			continue
		}

		field, op, ok := parseKey(key)
		if !ok {
			continue
		}
		fieldType := opts.Schema[field]

		if _, multi := whitelist[field]; multi && op == OpEq && len(raw) > 1 {
			in := make([]interface{}, len(raw))
			for i, v := range raw {
				in[i] = coerce(v, fieldType)
			}
			conditions = append(conditions, Condition{Field: field, Op: OpIn, Value: in})
			continue
		}

		conditions = append(conditions, Condition{Field: field, Op: op, Value: coerce(last(raw), fieldType)})
	}
	return conditions
}

// parseKey는 "field" 또는 "field[op]"를 구조적으로 분해합니다
// 허용되지 않은 연산자나 위험한 필드명은 ok=false입니다
func parseKey(key string) (string, Operator, bool) {
	field, op := key, OpEq

	if open := strings.IndexByte(key, '['); open >= 0 {
		if !strings.HasSuffix(key, "]") || open == 0 {
			return "", "", false
		}
		name := key[open+1 : len(key)-1]
		mapped, known := bracketOperators[name]
		if !known {
			return "", "", false
		}
		field, op = key[:open], mapped
	}

	if !safeField(field) {
		return "", "", false
	}
	return field, op, true
}

func safeField(field string) bool {
	if field == "" || strings.HasPrefix(field, "$") || strings.Contains(field, ".") {
		return false
	}
	return !strings.ContainsAny(field, "[]")
}

func coerce(raw string, t FieldType) interface{} {
	switch t {
	case Number:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case Time:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts
			}
		}
	case ObjectID:
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			return id
		}
	}
	return raw
}

func buildSort(raw string, fallback []SortKey) []SortKey {
	keys := make([]SortKey, 0)
	for _, part := range splitList(raw) {
		dir := Asc
		if strings.HasPrefix(part, "-") {
			dir = Desc
			part = part[1:]
		} else if strings.HasPrefix(part, "+") {
			part = part[1:]
		}
		if !safeField(part) {
			continue
		}
		keys = append(keys, SortKey{Field: part, Direction: dir})
	}

	if len(keys) == 0 {
		return append(keys, fallback...)
	}
	return keys
}

func buildProjection(raw string, defaultExclude []string) Projection {
	var include, exclude []string
	for _, part := range splitList(raw) {
		if strings.HasPrefix(part, "-") {
			if f := part[1:]; safeField(f) {
				exclude = append(exclude, f)
			}
			continue
		}
		if safeField(part) {
			include = append(include, part)
		}
	}

	// 포함과 제외를 섞을 수 없으므로 포함 목록이 있으면 포함만 사용합니다
	if len(include) > 0 {
		return Projection{Include: include}
	}
	if len(exclude) > 0 {
		return Projection{Exclude: exclude}
	}
	return Projection{Exclude: append([]string(nil), defaultExclude...)}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
