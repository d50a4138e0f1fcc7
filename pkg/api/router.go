package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garagesite/pkg/middleware"
	"garagesite/pkg/validation"
)

// PageRoutes is implemented by the site's page renderer.
type PageRoutes interface {
	Register(r gin.IRoutes)
	NotFound(c *gin.Context)
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Release        bool
}

// NewRouter wires middleware, the API routes and, when pages is not nil, the
// site pages.
func NewRouter(h *Handlers, pages PageRoutes, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	// Binding LeadRequest needs the phone and zipcode rules.
	if err := validation.Register(); err != nil {
		logger.Error("error registering form validation rules", zap.Error(err))
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)

	router.GET("/health", h.HealthCheck)

	apiGroup := router.Group("/api", middleware.CORS(cfg.AllowedOrigins))
	apiGroup.POST("/lead", h.HandleLead)
	apiGroup.POST("/submit-form", h.HandleSubmitForm)
	apiGroup.GET("/recaptcha/config", h.HandleRecaptchaConfig)
	apiGroup.GET("/schema/:kind", h.HandleSchema)
	apiGroup.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if pages != nil {
		pages.Register(router)
	}
	router.NoRoute(func(c *gin.Context) {
		if pages == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		pages.NotFound(c)
	})

	return router
}
