package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ryucoder/crown-backend/internal/handler/health"
	"github.com/ryucoder/crown-backend/internal/middleware"
	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	"github.com/ryucoder/crown-backend/pkg/auth"
)

// Handler registers a route block on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine     *gin.Engine
	jwtSvc     auth.JWTService
	users      repository.UserRepository
	businesses repository.BusinessRepository

	authH      Handler
	userH      Handler
	businessH  Handler
	orderH     Handler
	directoryH Handler
	healthH    *health.Handler

	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	log *zerolog.Logger,
	jwtSvc auth.JWTService,
	users repository.UserRepository,
	businesses repository.BusinessRepository,
	authH, userH, businessH, orderH, directoryH Handler,
	healthH *health.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := model.RegisterValidations(v); err != nil {
			log.Fatal().Err(err).Msg("failed to register binding validations")
		}
	}

	r := &Router{
		engine:     engine,
		jwtSvc:     jwtSvc,
		users:      users,
		businesses: businesses,
		authH:      authH,
		userH:      userH,
		businessH:  businessH,
		orderH:     orderH,
		directoryH: directoryH,
		healthH:    healthH,
		metrics:    initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
	)

	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}

	if config.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(limiter.Middleware())
	}

	return r
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public routes
	r.authH.RegisterRoutes(api)
	r.directoryH.RegisterRoutes(api)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(r.jwtSvc, r.users, r.businesses))
	r.userH.RegisterRoutes(authed)

	// Workflow routes additionally require an active business
	workflow := authed.Group("")
	workflow.Use(middleware.RequireBusiness())
	r.businessH.RegisterRoutes(workflow)
	r.orderH.RegisterRoutes(workflow)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
