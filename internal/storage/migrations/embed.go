package migrations

import "embed"

// PostgresFS holds the items/listings schema migrations, applied in
// lexical order.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the listings archive schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
