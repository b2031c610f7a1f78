package router

import (
	"fmt"
	"memocal/internal/interfaces/api/handler"
	"memocal/internal/pkg/logger"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the dependencies for the router.
type Config struct {
	MemoHandler *handler.MemoHandler
	Logger      logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		MaxAge:       300,
	}))

	// Routes
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := cfg.MemoHandler
	memos := e.Group("/memos")
	memos.GET("", h.ListMemos)
	memos.POST("", h.AddMemo)
	memos.GET("/stream", h.StreamMemos)
	memos.GET("/:id", h.GetMemo)
	memos.DELETE("/:id", h.DeleteMemo)
	memos.GET("/:id/map", h.OpenMap)

	e.GET("/date", h.GetViewedDate)
	e.PUT("/date", h.SetViewedDate)

	e.GET("/notifications/permission", h.GetPermission)
	e.POST("/notifications/permission", h.RequestPermission)

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
