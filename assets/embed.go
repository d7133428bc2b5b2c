// Package assets embeds static files shipped inside the binary.
package assets

import "embed"

// Migrations holds the SQLite schema scripts, applied in lexical order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
