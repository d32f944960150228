package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/carewell/carehome-api/internal/handler"
	authhandler "github.com/carewell/carehome-api/internal/handler/auth"
	bedhandler "github.com/carewell/carehome-api/internal/handler/bed"
	healthhandler "github.com/carewell/carehome-api/internal/handler/health"
	memberhandler "github.com/carewell/carehome-api/internal/handler/member"
	"github.com/carewell/carehome-api/internal/middleware"
)

type Config struct {
	Debug         bool
	RateLimitRPS  float64
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	apiLog  *middleware.APILogMiddleware
	authH   *authhandler.Handler
	bedH    *bedhandler.Handler
	memberH *memberhandler.Handler
	healthH *healthhandler.Handler
	h       *handler.Handler
	metrics *routerMetrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	apiLog *middleware.APILogMiddleware,
	authH *authhandler.Handler,
	bedH *bedhandler.Handler,
	memberH *memberhandler.Handler,
	healthH *healthhandler.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		apiLog:  apiLog,
		authH:   authH,
		bedH:    bedH,
		memberH: memberH,
		healthH: healthH,
		h:       h,
		metrics: initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.setupHealthCheck()

	api := r.engine.Group("/api")
	api.Use(r.apiLog.Log())

	r.authH.RegisterRoutes(api)

	adminOnly := r.auth.RequireAdmin()
	r.bedH.RegisterRoutes(api, adminOnly)
	r.memberH.RegisterRoutes(api, adminOnly)
	r.healthH.RegisterRoutes(api)
}

func (r *Router) setupHealthCheck() {
	health := r.engine.Group("/health")
	{
		health.GET("", r.h.LivenessCheck)
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	r.engine.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
