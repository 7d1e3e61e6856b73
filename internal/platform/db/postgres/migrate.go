package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/nikkisuraj26/cafe54-timecard/assets"
)

// MigrationAction はマイグレーション操作の種別です。
type MigrationAction string

const (
	MigrateUp      MigrationAction = "up"
	MigrateDown    MigrationAction = "down"
	MigrateDrop    MigrationAction = "drop"
	MigrateVersion MigrationAction = "version"
)

// MigrationResult は操作後のスキーマバージョンです。
type MigrationResult struct {
	Version uint
	Dirty   bool
	// Applied は何らかの変更が行われた場合に true です。
	Applied bool
}

// Migrator は同梱のマイグレーションを適用します。
type Migrator struct {
	source    fs.FS
	dir       string
	sourceDir string
	dsn       string
}

// MigratorOption は Migrator の設定を変更します。
type MigratorOption func(*Migrator)

// WithSourceDir は同梱ファイルの代わりにディスク上のディレクトリを読みます。
func WithSourceDir(dir string) MigratorOption {
	return func(m *Migrator) {
		m.sourceDir = dir
	}
}

// NewMigrator は dsn に対して同梱マイグレーションを適用する Migrator を返します。
func NewMigrator(dsn string, opts ...MigratorOption) *Migrator {
	m := &Migrator{source: assets.Migrations, dir: assets.MigrationsDir, dsn: dsn}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run は action を実行します。未適用の変更が無い場合もエラーにはしません。
func (m *Migrator) Run(action MigrationAction) (MigrationResult, error) {
	switch action {
	case MigrateUp, MigrateDown, MigrateDrop, MigrateVersion:
	default:
		return MigrationResult{}, fmt.Errorf("postgres: unsupported migration action %q", action)
	}

	mg, err := m.open()
	if err != nil {
		return MigrationResult{}, err
	}
	defer mg.Close()

	var res MigrationResult
	switch action {
	case MigrateUp:
		err = mg.Up()
	case MigrateDown:
		err = mg.Down()
	case MigrateDrop:
		if err := mg.Drop(); err != nil {
			return MigrationResult{}, fmt.Errorf("postgres: migrate drop: %w", err)
		}
		return MigrationResult{Applied: true}, nil
	}

	switch {
	case err == nil:
		res.Applied = action != MigrateVersion
	case errors.Is(err, migrate.ErrNoChange):
	default:
		return MigrationResult{}, fmt.Errorf("postgres: migrate %s: %w", action, err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("postgres: migrate version: %w", err)
	}
	res.Version = version
	res.Dirty = dirty
	return res, nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	if m.sourceDir != "" {
		absDir, err := filepath.Abs(m.sourceDir)
		if err != nil {
			return nil, fmt.Errorf("postgres: resolve path for %s: %w", m.sourceDir, err)
		}
		mg, err := migrate.New("file://"+filepath.ToSlash(absDir), m.dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: create migrate instance: %w", err)
		}
		return mg, nil
	}

	src, err := iofs.New(m.source, m.dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: open migrations: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", src, m.dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create migrate instance: %w", err)
	}
	return mg, nil
}
