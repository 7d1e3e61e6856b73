// Package assets は実行バイナリに同梱する SQL マイグレーションを提供します。
package assets

import "embed"

// Migrations は golang-migrate 形式のマイグレーションファイルです。
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir は Migrations 内のディレクトリ名です。
const MigrationsDir = "migrations"
