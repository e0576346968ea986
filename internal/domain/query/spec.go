// Package query는 신뢰할 수 없는 요청 쿼리 문자열을 검증된 조회 명세(Spec)로 변환합니다
//
// Spec은 저장소 구현과 무관한 필터, 정렬, 필드 선택, 페이지 정보이며
// 실행은 호출자(persistence layer)의 책임입니다
package query

import (
	"strings"
)

// Operator는 비교 연산자입니다
type Operator string

const (
	OpEq  Operator = "eq"
	OpIn  Operator = "in"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
)

// bracketOperators는 field[op]=v 형식으로 허용되는 연산자입니다
var bracketOperators = map[string]Operator{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// Condition은 하나의 필드 비교 조건입니다
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

// Direction은 정렬 방향입니다
type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

// SortKey는 정렬 키입니다
type SortKey struct {
	Field     string
	Direction Direction
}

// String은 "-field" 형식의 표현을 반환합니다
func (k SortKey) String() string {
	if k.Direction == Desc {
		return "-" + k.Field
	}
	return k.Field
}

// Projection은 응답에 포함하거나 제외할 필드 목록입니다
// Include가 비어 있으면 Exclude가 적용됩니다
type Projection struct {
	Include []string
	Exclude []string
}

// Spec은 목록 조회 한 번에 대한 조회 명세입니다
// 생성 후에는 변경하지 않습니다
type Spec struct {
	Conditions []Condition
	Sort       []SortKey
	Projection Projection
	Page       int
	Limit      int
	Skip       int
}

// Fields는 조건이 걸린 필드명을 중복 없이 반환합니다
func (s *Spec) Fields() []string {
	seen := make(map[string]struct{}, len(s.Conditions))
	fields := make([]string, 0, len(s.Conditions))
	for _, c := range s.Conditions {
		if _, ok := seen[c.Field]; ok {
			continue
		}
		seen[c.Field] = struct{}{}
		fields = append(fields, c.Field)
	}
	return fields
}

// ConditionsFor는 특정 필드의 조건들을 반환합니다
func (s *Spec) ConditionsFor(field string) []Condition {
	var out []Condition
	for _, c := range s.Conditions {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// WithScope는 부모 리소스 범위 조건을 앞에 추가한 복사본을 반환합니다
// 같은 필드의 요청 조건은 범위 조건으로 대체됩니다
func (s *Spec) WithScope(scope map[string]interface{}) *Spec {
	if len(scope) == 0 {
		return s
	}

	out := *s
	out.Conditions = make([]Condition, 0, len(s.Conditions)+len(scope))
	for _, field := range sortedKeys(scope) {
		out.Conditions = append(out.Conditions, Condition{Field: field, Op: OpEq, Value: scope[field]})
	}
	for _, c := range s.Conditions {
		if _, scoped := scope[c.Field]; scoped {
			continue
		}
		out.Conditions = append(out.Conditions, c)
	}
	return &out
}

// SortString은 정렬 키를 "a,-b" 형식으로 반환합니다
func (s *Spec) SortString() string {
	parts := make([]string, len(s.Sort))
	for i, k := range s.Sort {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}
