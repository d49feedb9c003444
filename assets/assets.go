// Package assets embeds the static files served under /assets.
package assets

import "embed"

//go:embed js/* static/*
var Assets embed.FS
