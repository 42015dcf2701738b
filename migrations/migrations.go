// Package migrations встраивает SQL-миграции в бинарник: боту не нужен
// каталог с файлами рядом с собой.
package migrations

import "embed"

//go:embed accounts/*.sql pharmacy/*.sql reports/*.sql
var FS embed.FS
