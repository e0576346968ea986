// Package views는 서버 렌더링 페이지 템플릿을 제공합니다
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates는 임베드된 페이지 템플릿을 파싱합니다
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"month": func(t time.Time) string { return t.Format("January 2006") },
		"first": func(ts []time.Time) *time.Time {
			if len(ts) == 0 {
				return nil
			}
			return &ts[0]
		},
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
