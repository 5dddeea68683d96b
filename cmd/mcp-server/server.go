package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/history"
	"github.com/njchilds90/gorevolve/validate"
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
}

type server struct {
	engine *gorevolve.Engine
	store  *history.Store
	logger *slog.Logger
}

// newRouter wires every route. store may be nil, in which case the
// history routes answer 503.
func newRouter(engine *gorevolve.Engine, store *history.Store, logger *slog.Logger) *gin.Engine {
	s := &server{engine: engine, store: store, logger: logger}
	r := gin.New()
	r.Use(s.recovery(), s.requestLog(), limitBody(maxBodyBytes))

	r.POST("/tool", s.handleTool)
	r.GET("/schema", s.handleSchema)
	r.GET("/health", s.handleHealth)
	r.POST("/compute", s.handleCompute)
	r.GET("/history", s.handleHistoryList)
	r.GET("/history/:id", s.handleHistoryGet)
	r.DELETE("/history", s.handleHistoryClear)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (s *server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error("panic in handler", "path", c.Request.URL.Path, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
	})
}

func (s *server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// POST /tool — execute a tool call
func (s *server) handleTool(c *gin.Context) {
	var req gorevolve.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	c.JSON(http.StatusOK, s.engine.HandleToolCall(req))
}

// GET /schema — tool schema for agent registration
func (s *server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(gorevolve.MCPToolSpec()))
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleCompute(c *gin.Context) {
	var req ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	res, err := s.engine.ComputeAllContext(c.Request.Context(), req.Function, *req.Lower, *req.Upper)
	if err != nil {
		var ve *validate.Error
		if errors.As(err, &ve) {
			locale := req.Locale
			if locale == "" {
				locale = s.engine.Locale()
			}
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Message(locale), Code: string(ve.Code)})
			return
		}
		s.logger.Error("compute failed", "function", req.Function, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "COMPUTE_FAILED"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) historyAvailable(c *gin.Context) bool {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history is disabled", Code: "NO_HISTORY"})
		return false
	}
	return true
}

func (s *server) handleHistoryList(c *gin.Context) {
	if !s.historyAvailable(c) {
		return
	}
	recs, err := s.store.List(c.Request.Context())
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *server) handleHistoryGet(c *gin.Context) {
	if !s.historyAvailable(c) {
		return
	}
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *server) handleHistoryClear(c *gin.Context) {
	if !s.historyAvailable(c) {
		return
	}
	if err := s.store.Clear(c.Request.Context()); err != nil {
		s.logger.Error("history clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		return
	}
	c.Status(http.StatusNoContent)
}
