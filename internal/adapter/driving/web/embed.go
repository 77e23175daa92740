package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet and logo).
//
//go:embed static/*
var StaticFS embed.FS
