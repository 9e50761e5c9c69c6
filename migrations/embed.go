// Package migrations содержит SQL миграции схемы, встроенные в бинарник.
package migrations

import "embed"

// FS содержит файлы миграций в формате goose
//
//go:embed *.sql
var FS embed.FS
