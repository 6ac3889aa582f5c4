package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quote-archive/pkg/archive"
	"quote-archive/pkg/domain"
)

// Server exposes the read-only quote API over HTTP.
type Server struct {
	archive *archive.Archive
	logger  *slog.Logger
}

// NewServer builds an API server over the given archive. A nil logger falls
// back to slog.Default().
func NewServer(a *archive.Archive, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{archive: a, logger: logger}
}

// Router builds the gin engine with all routes registered. The older
// /quotes/* paths are kept as aliases for clients that predate the /api
// prefix.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/api", s.handleRoot)
	r.GET("/", s.handleRoot)

	for _, prefix := range []string{"/api/quotes", "/quotes"} {
		r.GET(prefix, s.handleList)
		r.GET(prefix+"/random", s.handleRandom)
		r.GET(prefix+"/featured", s.handleFeatured)
		r.GET(prefix+"/stats", s.handleStats)
		r.GET(prefix+"/search", s.handleSearch)
	}

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("quote api listening", "addr", addr)
	return s.Router().Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the quote archive API.",
		"endpoints": gin.H{
			"all_quotes": "/api/quotes",
			"random":     "/api/quotes/random",
			"featured":   "/api/quotes/featured",
			"stats":      "/api/quotes/stats",
			"search":     "/api/quotes/search?query=...",
		},
		"stats": gin.H{
			"total_quotes": s.archive.Len(),
		},
	})
}

func (s *Server) handleList(c *gin.Context) {
	season, ok := intQuery(c, "season")
	if !ok {
		return
	}
	episode, ok := intQuery(c, "episode")
	if !ok {
		return
	}

	quotes := s.archive.List(season, episode)
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	c.JSON(http.StatusOK, quotes)
}

func (s *Server) handleRandom(c *gin.Context) {
	q, err := s.archive.Random()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleFeatured(c *gin.Context) {
	q, err := s.archive.Featured()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.archive.Stats())
}

func (s *Server) handleSearch(c *gin.Context) {
	results, err := s.archive.Search(c.Query("query"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if results == nil {
		results = []domain.Quote{}
	}
	c.JSON(http.StatusOK, results)
}

// fail maps archive errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, archive.ErrNoQuotes):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, archive.ErrQueryTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// intQuery parses an optional integer query parameter. On a malformed value
// it writes a 400 response and returns ok=false.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
