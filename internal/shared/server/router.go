package server

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everlof/sonda/internal/classifications"
	"github.com/everlof/sonda/internal/clp"
	"github.com/everlof/sonda/internal/rules"
	"github.com/everlof/sonda/internal/shared/config"
	"github.com/everlof/sonda/internal/shared/metrics"
	"github.com/everlof/sonda/internal/shared/server/middleware"
	"github.com/everlof/sonda/internal/shared/server/respond"
	"github.com/everlof/sonda/internal/shared/storage/db"
	"github.com/everlof/sonda/internal/shared/telemetry"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return "CLASSIFY"
				}
				return "DEFAULT"
			},
			Rules: map[string]middleware.RateLimitRule{
				"CLASSIFY": {Rate: cfg.RateLimitPerMin / 60.0, Burst: cfg.RateLimitBurst},
			},
		}),
	)

	// Loading the embedded reference data panics on inconsistency; do it
	// at boot, not on the first request.
	store := clp.Default()

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Warn("db.unavailable", map[string]any{"error": err.Error(), "fallback": "memory"})
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				telemetry.Warn("db.migrations_failed", map[string]any{"error": err.Error(), "fallback": "memory"})
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var repo classifications.Repo
	if sqlDB != nil {
		repo = &classifications.PGRepo{DB: sqlDB}
	} else {
		repo = classifications.NewMemoryRepo()
	}
	svc := &classifications.Service{
		Repo:            repo,
		Store:           store,
		DefaultRulesets: cfg.DefaultRulesets,
	}
	classificationHandler := classifications.NewHandler(svc)
	rulesetHandler := rules.NewHandler()

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "clpVersion": store.Version()})
	})
	classificationHandler.RegisterRoutes(api)
	rulesetHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

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
