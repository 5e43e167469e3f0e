package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"othello/cli"
)

//go:embed web/*
var webFS embed.FS

func main() {
	webRoot, err := fs.Sub(webFS, "web")
	if err != nil {
		slog.Error("failed to load web assets", "error", err)
		os.Exit(1)
	}
	if err := cli.Execute(webRoot); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
