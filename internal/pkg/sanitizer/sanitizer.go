// Package sanitizer는 요청 본문을 NoSQL 연산자 주입과 XSS로부터 정리합니다
package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func policy() *bluemonday.Policy {
	initOnce.Do(func() {
		// StrictPolicy는 모든 HTML을 제거하고 텍스트만 남깁니다
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// String은 문자열에서 모든 HTML 태그를 제거합니다
func String(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	return policy().Sanitize(s)
}

// UnsafeKey는 "$"로 시작하거나 "."을 포함하는 키인지 반환합니다
func UnsafeKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

// Value는 디코딩된 JSON 값을 재귀적으로 정리합니다
// 위험한 키는 삭제하고 문자열 값은 HTML을 제거합니다
func Value(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, inner := range val {
			if UnsafeKey(key) {
				delete(val, key)
				continue
			}
			val[key] = Value(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = Value(inner)
		}
		return val
	case string:
		return String(val)
	default:
		return val
	}
}
