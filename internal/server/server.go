// Package server exposes import, export and live database introspection over
// HTTP for the diagram editor.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"erdsketch/internal/graph"
	"erdsketch/internal/logger"
	"erdsketch/internal/sqlschema"
	"erdsketch/pkg/config"
)

// DefaultConnectTimeout is the database connect timeout in seconds.
const DefaultConnectTimeout = 10

// Server holds the editor configuration and the active database connection.
type Server struct {
	parser *sqlschema.Parser

	mu            sync.RWMutex
	cfg           config.AppConfig
	activeDriver  string
	activeDSN     string
	activeTimeout int
}

// New returns a server for cfg. A database section that builds a DSN becomes
// the active connection.
func New(cfg config.AppConfig) *Server {
	s := &Server{parser: sqlschema.NewParser(), cfg: cfg, activeTimeout: DefaultConnectTimeout}
	if cfg.Database.Type != "" {
		drv, dsn, err := config.BuildDriverAndDSN(cfg.Database)
		if err == nil {
			s.setActive(drv, dsn, DefaultConnectTimeout)
		} else {
			logger.Error("error building DSN: %v", err)
		}
	}
	return s
}

// SetConnectTimeout sets the connect timeout in seconds used by
// /api/connect and /api/schema. Values below one keep the current timeout.
func (s *Server) SetConnectTimeout(timeout int) {
	if timeout < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTimeout = timeout
}

func (s *Server) setActive(driver, dsn string, timeout int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDriver = driver
	s.activeDSN = dsn
	s.activeTimeout = timeout
}

// getActive returns the active database connection
func (s *Server) getActive() (string, string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeDriver, s.activeDSN, s.activeTimeout
}

func (s *Server) currentConfig() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) layout() graph.Layout {
	l := s.currentConfig().Layout
	if l.XSpacing == 0 && l.YSpacing == 0 {
		return graph.DefaultLayout()
	}
	return graph.Layout{XSpacing: l.XSpacing, YSpacing: l.YSpacing}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(), cors.Default())

	api := r.Group("/api")
	{
		api.POST("/import", s.handleImport)
		api.POST("/export", s.handleExport)
		api.GET("/datatypes", s.handleDataTypes)
		api.GET("/getConnect", s.handleGetConnect)
		api.POST("/connect", s.handleConnect)
		api.GET("/schema", s.handleSchema)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if web := s.currentConfig().Server.Web; web != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(web))))
	}
	return r
}

// HTTPServer wraps Router in an http.Server listening on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.currentConfig().Server.Port),
		Handler:      s.Router(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
