// Package logger は slog を薄く包んだ構造化ロガーを提供します。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// getCaller -> ログメソッド -> 呼び出し元
const callerSkipFrames = 2

// Logger はアプリケーション全体で使うロギングインターフェースです。
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	// Named は component 属性を付けた子ロガーを返します。
	Named(name string) Logger
}

// Field は構造化ログのキーと値です。
type Field struct {
	Key   string
	Value any
}

// Field コンストラクタ。
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{logger: l.logger.With(slog.String("component", name))}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", getCaller()))
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// Option は Init / New の出力先や形式を変更します。
type Option func(*options)

type options struct {
	format string
	out    io.Writer
	level  *slog.LevelVar
}

// WithFormat は text または json を指定します。
func WithFormat(format string) Option {
	return func(o *options) { o.format = strings.ToLower(strings.TrimSpace(format)) }
}

// WithOutput は出力先を指定します。既定は標準出力です。
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

var (
	mu       sync.RWMutex
	global   Logger
	levelVar slog.LevelVar
)

// New はグローバルとは独立した Logger を返します。レベルは info 固定です。
func New(opts ...Option) Logger {
	o := options{format: "text", out: os.Stdout, level: new(slog.LevelVar)}
	for _, opt := range opts {
		opt(&o)
	}
	return build(o)
}

func build(o options) Logger {
	handlerOpts := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler
	if o.format == "json" {
		h = slog.NewJSONHandler(o.out, handlerOpts)
	} else {
		h = slog.NewTextHandler(o.out, handlerOpts)
	}
	return &slogLogger{logger: slog.New(h)}
}

// Init はグローバルロガーを初期化します。
func Init(opts ...Option) error {
	o := options{format: "text", out: os.Stdout, level: &levelVar}
	for _, opt := range opts {
		opt(&o)
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("logger: unknown format %q", o.format)
	}

	l := build(o)
	mu.Lock()
	global = l
	mu.Unlock()
	return nil
}

// Get はグローバルロガーを返します。Init 前に呼ぶと panic します。
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named はグローバルロガーから子ロガーを作ります。
func Named(name string) Logger {
	return Get().Named(name)
}

// Nop は何も出力しない Logger を返します。
func Nop() Logger {
	return New(WithOutput(io.Discard))
}

// SetLevel はグローバルロガーのレベルを変更します。
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString は debug, info, warn/warning, error を受け付けます。
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("logger: unknown level %q", level)
	}
	return nil
}

// getCaller は呼び出し元を作業ディレクトリからの相対パスで返します。
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}

	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
