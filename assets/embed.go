// Package assets embeds files the server needs at runtime.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations returns the schema migrations, named NNN_description.sql.
func Migrations() fs.FS {
	sub, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		// sql/ is embedded at build time, so Sub cannot fail.
		panic(err)
	}
	return sub
}
