package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"studynotes/internal/bootstrap"
	"studynotes/internal/platform/mysql"
	"studynotes/internal/transport/http/handler"
	"studynotes/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger.Named("http")), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, map[string]handler.Checker{
		"mysql": func(ctx context.Context) error {
			return mysql.Ping(ctx, app.MySQL)
		},
		"redis": func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(context.Context) error {
			if app.MQConn == nil || app.MQConn.IsClosed() {
				return errConnectionClosed
			}
			return nil
		},
		"vectordb": app.Vectors.Ping,
	})
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	Register(router.Group("/api/v1"), Services{
		Auth:           app.AuthService,
		Rules:          app.RuleService,
		Files:          app.FileService,
		Search:         app.SearchService,
		JWTSecret:      app.Config.Auth.JWTSecret,
		MaxUploadBytes: app.Config.MaxUploadBytes(),
	})
	return router
}
