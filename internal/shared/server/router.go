package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"sof-backend/internal/analyses"
	"sof-backend/internal/documents"
	"sof-backend/internal/export"
	"sof-backend/internal/shared/config"
	"sof-backend/internal/shared/metrics"
	"sof-backend/internal/shared/server/middleware"
	"sof-backend/internal/shared/server/respond"
)

// Rate limit groups. Uploads and synchronous processing are costly, so
// they get a much tighter budget than status polling.
const (
	rateGroupUpload = "UPLOAD"
	rateGroupPoll   = "POLL"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	AnalysesHandler  *analyses.Handler
	ExportHandler    *export.Handler
	RateLimiter      *middleware.RateLimiter
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
		middleware.RateLimit(rateLimitConfig(deps.RateLimiter)),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.AnalysesHandler != nil {
		deps.AnalysesHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}

	r.GET("/metrics", metrics.Handler())

	registerStatic(r, deps.Config.StaticDir)

	return r
}

// registerStatic serves the dashboard pages when a static dir is configured.
func registerStatic(r *gin.Engine, staticDir string) {
	if strings.TrimSpace(staticDir) == "" {
		return
	}
	r.Static("/static", staticDir)
	page := func(name string) gin.HandlerFunc {
		full := filepath.Join(staticDir, name)
		return func(c *gin.Context) {
			c.File(full)
		}
	}
	r.GET("/", page("index.html"))
	r.GET("/upload", page("upload.html"))
	r.GET("/data", page("data.html"))
}

func rateLimitConfig(limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]middleware.RateLimitRule{
			rateGroupUpload: {Rate: 0.5, Burst: 5},
			rateGroupPoll:   {Rate: 5, Burst: 20},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			switch {
			case c.Request.Method == http.MethodPost && (path == "/api/v1/documents" || path == "/api/v1/process"):
				return rateGroupUpload
			case c.Request.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/analyses"):
				return rateGroupPoll
			default:
				return ""
			}
		},
	}
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
