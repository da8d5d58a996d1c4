package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewServer builds an echo instance with the standard middleware stack and routes.
func NewServer(h *Handler, logger *zap.Logger, cors bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cors {
		e.Use(middleware.CORS())
	}
	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))
	e.HTTPErrorHandler = errorHandler(e, logger)

	h.RegisterRoutes(e)
	return e
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// errorHandler logs unexpected errors before handing them to echo's default handler.
func errorHandler(e *echo.Echo, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); !ok || he.Code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
