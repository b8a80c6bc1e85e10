// Package web holds the embedded page templates, static assets and
// fallback sprites of the viewer.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var templates embed.FS

//go:embed static/*
var static embed.FS

//go:embed sprites/*.svg
var sprites embed.FS

// Templates returns the page templates.
func Templates() fs.FS {
	sub, _ := fs.Sub(templates, "templates")
	return sub
}

// Static returns the stylesheet and scripts.
func Static() fs.FS {
	sub, _ := fs.Sub(static, "static")
	return sub
}

// Sprites returns the fallback node type sprites.
func Sprites() fs.FS {
	sub, _ := fs.Sub(sprites, "sprites")
	return sub
}
