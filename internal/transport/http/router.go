package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/superlists/internal/transport/http/handler"
	"github.com/ErlanBelekov/superlists/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	listHandler *handler.ListHandler,
	users middleware.UserResolver,
	jwtKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(jwtKey)
	optionalAuth := middleware.OptionalAuth(jwtKey)
	ensureUser := middleware.EnsureUser(users, logger)
	optionalUser := middleware.OptionalUser(users, logger)

	accounts := r.Group("/accounts")
	accounts.POST("/send-login-email", authHandler.SendLoginEmail)
	accounts.GET("/login", authHandler.Login)
	accounts.POST("/logout", authHandler.Logout)
	accounts.GET("/me", authMW, ensureUser, authHandler.Me)

	// Lists are usable anonymously; a session only attaches an owner.
	lists := r.Group("/lists", optionalAuth, optionalUser)
	lists.POST("", listHandler.Create)
	lists.GET("/:id", listHandler.GetByID)
	lists.POST("/:id/items", listHandler.AddItem)

	mine := r.Group("/lists", authMW, ensureUser)
	mine.GET("", listHandler.Mine)

	return r
}
