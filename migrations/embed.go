// Package migrations embeds the SQL schema migrations applied by cmd/migrate,
// the server at startup, and the integration test harness.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
