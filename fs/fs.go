// Package appfs embeds the files shipped with the binaries: migrations, templates & static assets.
package appfs

import "embed"

//go:embed migrations all:templates static
var FS embed.FS

const (
	MigrationsDir       = "migrations"
	EmailTemplatesDir   = "templates/email"
	ConsoleTemplatesDir = "templates/console"
	StaticDir           = "static"
)
