package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	appsvc "studynotes/internal/app"
	"studynotes/internal/transport/http/handler"
	"studynotes/internal/transport/http/middleware"
)

var errConnectionClosed = errors.New("connection closed")

type Services struct {
	Auth           *appsvc.AuthService
	Rules          *appsvc.RuleService
	Files          *appsvc.FileService
	Search         *appsvc.SearchService
	JWTSecret      string
	MaxUploadBytes int64
}

// Register mounts the API on v1. Everything except register and login
// requires a bearer token; the token's username scopes every call.
func Register(v1 *gin.RouterGroup, svc Services) {
	authHandler := handler.NewAuthHandler(svc.Auth)
	ruleHandler := handler.NewRuleHandler(svc.Rules)
	fileHandler := handler.NewFileHandler(svc.Files, svc.MaxUploadBytes)
	searchHandler := handler.NewSearchHandler(svc.Search)
	authJWT := middleware.AuthJWT(svc.JWTSecret)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authJWT, authHandler.Me)

	secured := v1.Group("")
	secured.Use(authJWT)

	secured.GET("/rules", ruleHandler.List)
	secured.POST("/rules", ruleHandler.Create)
	secured.PUT("/rules", ruleHandler.Update)
	secured.DELETE("/rules/:id", ruleHandler.Delete)

	secured.GET("/files", fileHandler.List)
	secured.POST("/files", fileHandler.Upload)
	secured.DELETE("/files/:id", fileHandler.Delete)
	secured.GET("/runs/:id", fileHandler.GetRun)

	secured.POST("/search", searchHandler.Search)
}
