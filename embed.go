// Package replog embeds the web frontend for serving from the binary.
package replog

import "embed"

//go:embed web
var WebFS embed.FS
