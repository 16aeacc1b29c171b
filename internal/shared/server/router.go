package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authapi "docqa-backend/internal/auth"
	"docqa-backend/internal/documents"
	"docqa-backend/internal/query"
	"docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/server/middleware"
	"docqa-backend/internal/shared/server/respond"
	"docqa-backend/internal/users"
)

// RouterDeps carries everything the router needs, built by bootstrap.
type RouterDeps struct {
	Config           config.Config
	Tokens           *auth.TokenManager
	AuthHandler      *authapi.Handler
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	QueryHandler     *query.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	public := r.Group("")
	deps.AuthHandler.RegisterRoutes(public)

	protected := r.Group("")
	protected.Use(middleware.Auth(deps.Tokens))
	deps.UsersHandler.RegisterRoutes(protected)
	deps.DocumentsHandler.RegisterRoutes(protected)
	deps.QueryHandler.RegisterRoutes(protected)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
