package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix は設定を上書きする環境変数の接頭辞です。
	EnvPrefix = "TIMECARD_"

	// DriverPostgres は PostgreSQL を永続ストアとして使います。
	DriverPostgres = "postgres"
	// DriverMemory はプロセス内メモリのみを使います。
	DriverMemory = "memory"
)

// ErrInvalidConfig は設定値の検証に失敗した場合に返却されます。
var ErrInvalidConfig = errors.New("config: invalid")

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	LogLevel  string         `koanf:"log_level"`
	LogFormat string         `koanf:"log_format"`
	Server    ServerConfig   `koanf:"server"`
	Storage   StorageConfig  `koanf:"storage"`
	Database  DatabaseConfig `koanf:"database"`
}

// ServerConfig は HTTP / gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `koanf:"listen_addr"`
	// GRPCHealthAddr が空なら gRPC ヘルスサーバーは起動しません。
	GRPCHealthAddr     string        `koanf:"grpc_health_addr"`
	CORSAllowOrigins   []string      `koanf:"cors_allow_origins"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	HealthPollInterval time.Duration `koanf:"health_poll_interval"`
}

// StorageConfig はストレージ選択と初期データに関する設定です。
type StorageConfig struct {
	Driver                string   `koanf:"driver"`
	AutoMigrate           bool     `koanf:"auto_migrate"`
	AutoRegisterEmployees bool     `koanf:"auto_register_employees"`
	SeedEmployees         []string `koanf:"seed_employees"`
	RosterFile            string   `koanf:"roster_file"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。URL が指定されていれば個別項目より優先します。
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

// Default は既定値で埋めた設定を返します。
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			ListenAddr:         ":5000",
			CORSAllowOrigins:   []string{"*"},
			ShutdownTimeout:    10 * time.Second,
			HealthPollInterval: 5 * time.Second,
		},
		Storage: StorageConfig{
			Driver:        DriverPostgres,
			AutoMigrate:   true,
			SeedEmployees: []string{"JILL"},
		},
		Database: DatabaseConfig{
			Port:           5432,
			SSLMode:        "disable",
			ConnectTimeout: 5 * time.Second,
		},
	}
}

// Load は既定値、YAML ファイル、環境変数の順に重ねて設定を構築します。
// path が空ならファイルは読みません。カレントディレクトリの .env があれば先に環境変数へ取り込みます。
func Load(_ context.Context, path string) (*Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
	}

	// TIMECARD_DATABASE__HOST -> database.host
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	applyAliases(cfg, k)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// applyAliases は PORT と DATABASE_URL を明示的な設定が無い場合に限り反映します。
func applyAliases(cfg *Config, k *koanf.Koanf) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && !k.Exists("server.listen_addr") {
		cfg.Server.ListenAddr = ":" + port
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" && !k.Exists("database.url") {
		cfg.Database.URL = dsn
	}
}

func (c *Config) validateAndNormalize() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("%w: server.listen_addr must be set", ErrInvalidConfig)
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.HealthPollInterval <= 0 {
		c.Server.HealthPollInterval = 5 * time.Second
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "text":
		c.LogFormat = "text"
	case "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("%w: storage.driver must be postgres or memory, got %q", ErrInvalidConfig, c.Storage.Driver)
	}

	return c.Database.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.ConnectTimeout <= 0 {
		d.ConnectTimeout = 5 * time.Second
	}

	if d.URL != "" {
		if _, err := url.Parse(d.URL); err != nil {
			return fmt.Errorf("%w: database.url: %v", ErrInvalidConfig, err)
		}
		return nil
	}

	if d.Host == "" {
		return fmt.Errorf("%w: database.host must be set", ErrInvalidConfig)
	}
	if d.Port == 0 {
		return fmt.Errorf("%w: database.port must be set", ErrInvalidConfig)
	}
	if d.User == "" {
		return fmt.Errorf("%w: database.user must be set", ErrInvalidConfig)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: database.name must be set", ErrInvalidConfig)
	}
	return nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
