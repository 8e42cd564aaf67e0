// Package ui holds the HTML templates and static assets compiled into the binary.
package ui

import "embed"

//go:embed html static
var Files embed.FS
