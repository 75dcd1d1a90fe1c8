package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/health"
	"github.com/samruddhi/pipecut/internal/logger"
	"github.com/samruddhi/pipecut/internal/services"
	"github.com/samruddhi/pipecut/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options tunes the HTTP server
type Options struct {
	StaticDir string
	RateLimit float64 // requests per second for /api, 0 disables limiting
	RateBurst int
}

// Server serves the web page and the JSON API
type Server struct {
	router         *gin.Engine
	plannerService *services.PlannerService
	statsService   *services.StatsService
	monitor        *health.Monitor
	target         db.Target
	limiter        *rate.Limiter
}

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer creates a new API server
func NewServer(planner *services.PlannerService, stats *services.StatsService, monitor *health.Monitor, target db.Target, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:         gin.New(),
		plannerService: planner,
		statsService:   stats,
		monitor:        monitor,
		target:         target,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.router.Use(gin.Recovery(), requestID(), requestLogger())
	s.router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")))

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			s.router.Static("/static", opts.StaticDir)
		} else {
			logger.Warning("Static directory %s not found, /static disabled", opts.StaticDir)
		}
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.indexPage)
	s.router.POST("/", s.indexSubmit)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	v1.Use(s.rateLimit())
	{
		v1.GET("/health", s.health)
		v1.GET("/stats", s.getStats)

		v1.GET("/leftovers", s.listLeftovers)
		v1.POST("/leftovers", s.createLeftover)
		v1.DELETE("/leftovers", s.clearLeftovers)
		v1.DELETE("/leftovers/:id", s.deleteLeftover)

		v1.POST("/plans/single", s.planSingle)
		v1.POST("/plans/multi", s.planMulti)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server
func (s *Server) Run(address string) error {
	return s.NewHTTPServer(address).ListenAndServe()
}

// NewHTTPServer wraps the router in an http.Server so callers can shut it down
func (s *Server) NewHTTPServer(address string) *http.Server {
	return &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, APIResponse{Success: false, Error: message})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrLeftoverNotFound):
		return http.StatusNotFound
	case errors.Is(err, cutting.ErrCutTooLong), errors.Is(err, cutting.ErrInvalidLength),
		errors.Is(err, cutting.ErrTooManyPieces):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrRemoteUnavailable), errors.Is(err, db.ErrLocalUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.errorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

// health handles GET /api/v1/health
func (s *Server) health(c *gin.Context) {
	st := s.monitor.Status()
	if st.CheckedAt.IsZero() {
		st = s.monitor.Check(c.Request.Context())
	}

	code := http.StatusOK
	if !st.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, APIResponse{Success: st.Healthy, Data: st, Error: st.Error})
}
