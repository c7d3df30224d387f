// Package migrations embebe el esquema SQL (goose) para que el binario migre sin archivos externos.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
