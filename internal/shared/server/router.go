package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitch-backend/internal/pitch"
	"pitch-backend/internal/shared/config"
	"pitch-backend/internal/shared/server/middleware"
	"pitch-backend/internal/shared/server/respond"
	"pitch-backend/internal/transcribe"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config     config.Config
	Pitch      *pitch.Handler
	Transcribe *transcribe.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.Pitch.RegisterRoutes(api)
	deps.Transcribe.RegisterRoutes(api)

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
