package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgoj/paplogger/internal/config"
	"github.com/orgoj/paplogger/internal/handler"
	"github.com/orgoj/paplogger/internal/iputil"
	"github.com/orgoj/paplogger/internal/logger"
	"golang.org/x/time/rate"
)

// Dependencies holds the dependencies needed by the server.
type Dependencies struct {
	Config *config.Config
	Facade *logger.Facade
}

// Server is the admin HTTP API of a facade.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	facade     *logger.Facade
	log        *logger.ContextLogger
	allowed    []*net.IPNet
	// Rate limiting specific
	limiters   map[string]*rate.Limiter
	limiterMu  sync.Mutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewServer creates a new server instance with its dependencies.
func NewServer(deps Dependencies) (*Server, error) {
	// Validate dependencies
	if deps.Config == nil {
		panic("server: Config dependency cannot be nil")
	}
	if deps.Facade == nil {
		panic("server: Facade dependency cannot be nil")
	}

	allowed, err := iputil.ParseCIDRs(deps.Config.Admin.AllowedIPs)
	if err != nil {
		return nil, fmt.Errorf("invalid admin.allowed_ips: %w", err)
	}

	if deps.Config.Admin.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		config:   deps.Config,
		facade:   deps.Facade,
		log:      deps.Facade.Named("admin"),
		allowed:  allowed,
		limiters: make(map[string]*rate.Limiter),
	}
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogMiddleware())

	if limit := deps.Config.Admin.RateLimit; limit > 0 {
		// Convert requests per minute to requests per second
		s.rateLimit = rate.Limit(float64(limit) / 60.0)
		s.burstLimit = limit
		s.log.Debug("Rate limiting enabled for /logger: Rate=%.2f req/sec, Burst=%d", s.rateLimit, s.burstLimit)
	} else {
		s.rateLimit = rate.Inf
	}

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(deps.Config.Admin.Host, strconv.Itoa(deps.Config.Admin.Port)),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	s.router.GET("/version", handler.VersionHandler)

	group := s.router.Group("/logger")
	group.Use(s.allowListMiddleware())
	if s.rateLimit != rate.Inf {
		group.Use(s.rateLimitMiddleware())
	}

	deps := handler.LoggerHandlerDeps{Facade: s.facade}
	group.GET("", handler.NewStateHandler(deps))
	group.PUT("/level", handler.NewLevelHandler(deps))
	group.PUT("/verbose", handler.NewVerboseHandler(deps))
	group.PUT("/file", handler.NewFileHandler(deps))
	group.PUT("/syslog", handler.NewSyslogHandler(deps))
	group.PUT("/hostname-prefix", handler.NewHostnamePrefixHandler(deps))
	group.POST("/log", handler.NewLogHandler(deps))
}

// requestLogMiddleware logs every request through the facade.
func (s *Server) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("%s %s %d %s %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), iputil.RemoteIP(c.Request))
	}
}

// allowListMiddleware rejects peers outside admin.allowed_ips.
func (s *Server) allowListMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !iputil.IsAllowed(c.Request, s.allowed) {
			s.log.Warning("Rejected admin request from %s", iputil.RemoteIP(c.Request))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware creates a Gin middleware for rate limiting based on IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := iputil.RemoteIP(c.Request)

		s.limiterMu.Lock()
		limiter, exists := s.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(s.rateLimit, s.burstLimit)
			s.limiters[ip] = limiter
		}
		s.limiterMu.Unlock()

		if !limiter.Allow() {
			s.log.Info("Rate limit exceeded for IP: %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// Start serves the API until Shutdown is called. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting admin API on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
