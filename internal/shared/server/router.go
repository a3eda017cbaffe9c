package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessments"
	"governance-backend/internal/policy"
	"governance-backend/internal/questionnaire"
	"governance-backend/internal/riskmatrix"
	"governance-backend/internal/services/health"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/server/middleware"
	"governance-backend/internal/shared/server/respond"
)

// RouterDeps holds the handlers mounted on the API. Nil handlers are skipped.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	Assessments   *assessments.Handler
	Questionnaire *questionnaire.Handler
	Matrix        *riskmatrix.Handler
	Policies      *policy.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(rateLimitConfig(cfg)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		payload, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	registerMeRoutes(api)

	if deps.Assessments != nil {
		deps.Assessments.RegisterRoutes(api)
	}
	if deps.Matrix != nil {
		deps.Matrix.RegisterRoutes(api)
	}
	if deps.Questionnaire != nil {
		deps.Questionnaire.RegisterRoutes(api)
	}
	if deps.Policies != nil {
		deps.Policies.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitPerMinute > 0 {
		rules[middleware.RateLimitGroupDefault] = perMinute(cfg.RateLimitPerMinute)
	}
	if cfg.AssessRateLimitPerMinute > 0 {
		rules[middleware.RateLimitGroupAssess] = perMinute(cfg.AssessRateLimitPerMinute)
	}
	return middleware.RateLimitConfig{
		Rules:    rules,
		GroupFor: middleware.GroupForRoute,
	}
}

func perMinute(n int) middleware.RateLimitRule {
	burst := n / 6
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimitRule{PerMinute: n, Burst: burst}
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
