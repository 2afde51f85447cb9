// Package web embeds the shared shopping page served at the root URL.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
