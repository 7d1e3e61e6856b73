package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer は echo サーバーのライフサイクルを管理します。
type HTTPServer struct {
	listenAddr      string
	echo            *echo.Echo
	shutdownTimeout time.Duration
}

// NewHTTP は指定されたアドレスで待ち受ける HTTP サーバーを構築します。
func NewHTTP(listenAddr string, e *echo.Echo, shutdownTimeout time.Duration) *HTTPServer {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	e.HideBanner = true
	e.HidePort = true
	return &HTTPServer{
		listenAddr:      listenAddr,
		echo:            e,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると Shutdown します。
func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。lis はサーバー停止時に閉じられます。
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		shutdownErr <- s.echo.Shutdown(shutdownCtx)
	}()

	if err := s.echo.Server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}
