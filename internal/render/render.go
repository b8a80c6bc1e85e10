package render

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var fragments = template.Must(template.New("fragments").ParseFS(templateFS, "templates/*.tmpl"))

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render fragment", slog.String("template", name), slog.String("error", err.Error()))
		return ""
	}
	return template.HTML(buf.String())
}
