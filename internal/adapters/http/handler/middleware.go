package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

const unmatchedRoute = "unmatched"

// HTTPRecorder は HTTP リクエストのメトリクス出力先です。
type HTTPRecorder interface {
	RecordHTTPRequest(route, method string, status int, d time.Duration)
}

// MetricsMiddleware はルート単位でリクエスト数とレイテンシを記録します。
func MetricsMiddleware(rec HTTPRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// エラーハンドラはミドルウェアの外側で呼ばれるため、ここで応答コードを決めておく。
				status, _ = toHTTPError(err)
			}
			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}
			rec.RecordHTTPRequest(route, c.Request().Method, status, time.Since(start))
			return err
		}
	}
}

// RequestLogger は 1 リクエストにつき 1 行のアクセスログを出します。
func RequestLogger(l logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.String("route", v.RoutePath),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
				l.Warn(c.Request().Context(), "request", fields...)
				return nil
			}
			l.Info(c.Request().Context(), "request", fields...)
			return nil
		},
	})
}
