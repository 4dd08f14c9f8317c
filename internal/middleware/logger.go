package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"go.uber.org/zap"
)

// RequestContext copies the request id onto the request context.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(reqctx.WithRID(req.Context(), rid)))
			}
			return next(c)
		}
	}
}

func RequestLogger(l *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Duration("latency", v.Latency),
				zap.String("client_ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			if uid, ok := c.Get("uid").(uint64); ok {
				fields = append(fields, zap.Uint64("user_id", uid))
			}
			if cause, ok := c.Get("handler_error").(string); ok {
				fields = append(fields, zap.String("cause", cause))
			}
			switch {
			case v.Error != nil || v.Status >= 500:
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				l.Error("HTTP", fields...)
			case v.Status >= 400:
				l.Warn("HTTP", fields...)
			default:
				l.Info("HTTP", fields...)
			}
			return nil
		},
	})
}
