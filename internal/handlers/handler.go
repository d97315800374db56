package handlers

import (
	"context"
	"net/http"
	"time"

	_ "task_api/docs"
	"task_api/internal/logger"
	"task_api/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// DefaultTokenHeader is the request header carrying the access token.
const DefaultTokenHeader = "x-auth-token"

// Checker is a dependency the health endpoint pings.
type Checker interface {
	Ping(ctx context.Context) error
}

// Options holds the HTTP-facing settings.
type Options struct {
	TokenHeader string
	CORSOrigins []string
	StaticDir   string
	// Checks are pinged by /health, keyed by dependency name.
	Checks map[string]Checker
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.TokenHeader == "" {
		opts.TokenHeader = DefaultTokenHeader
	}
	registerValidators()
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestID, h.requestLogger, h.corsMiddleware())

	router.GET("/api/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerTaskRoutes(router)

	if h.opts.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(h.opts.StaticDir))))
	}
	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", validated[registerRequest](h), h.register)
		auth.POST("/login", validated[loginRequest](h), h.login)
	}
}

// Validation runs before token verification on routes with a body.
func (h *Handler) registerTaskRoutes(r *gin.Engine) {
	task := r.Group("/task")
	{
		task.GET("/read", h.tokenAuth, h.withIdentity(h.readTasks))
		task.POST("/create", validated[taskRequest](h), h.tokenAuth, h.withIdentity(h.createTask))
		task.PUT("/update/:id", validated[taskRequest](h), h.tokenAuth, h.withIdentity(h.updateTask))
		task.DELETE("/delete/:id", h.tokenAuth, h.withIdentity(h.deleteTask))
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, h.opts.TokenHeader, requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	origins := h.opts.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
