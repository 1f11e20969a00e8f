package main

import (
	"embed"
	"io/fs"

	"github.com/revisio/revisio/internal/server"
)

// The ui directory ships a minimal dashboard page; `make build` replaces
// it with the full ui/dist build.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetWebUI(sub)
}
