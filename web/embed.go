// Package web holds the static single-page frontend served by the API router.
package web

import "embed"

//go:embed index.html app.js style.css
var Files embed.FS
