package site

import (
	"embed"
	"html/template"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html")) //nolint:gochecknoglobals // parsed once at init
