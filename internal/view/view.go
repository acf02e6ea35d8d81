// Package view はエディタとログインページのHTMLテンプレートを提供します。
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates は埋め込み済みテンプレートをパースして返します。
// Ginエンジンの SetHTMLTemplate にそのまま渡せます。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
