// Package migrations embeds the schema migrations applied by the migrate
// command and by the integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
