// Package migrations embeds the SQL schema for the sqlite and postgres
// document stores.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
