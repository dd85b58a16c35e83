// Package migrations ships the SQL migrations of multiauth and registers them
// under the "migrations" publish group.
package migrations

import (
	"embed"
	"io/fs"

	"kv-shepherd.io/multiauth/internal/publish"
)

//go:embed *.sql
var files embed.FS

// FS returns the embedded migrations.
func FS() fs.FS {
	return files
}

func init() {
	publish.MustRegister(publish.GroupMigrations, files)
}
