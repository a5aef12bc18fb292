package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pawpal/internal/config"
	"pawpal/internal/dialogue"
	"pawpal/internal/logging"
)

// Server hosts the turn endpoint consumed by the chat orchestrator.
type Server struct {
	service    *dialogue.Service
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
}

// New builds the HTTP surface around the dialogue service.
func New(service *dialogue.Service, cfg config.ServerConfig, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		service: service,
		engine:  engine,
		logger:  logging.OrNop(logger),
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.POST("/v1/conversations/:id/turns", s.handleTurn)
}

type turnRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	Message           string `json:"message" binding:"required"`
	ContinuationState []byte `json:"continuation_state,omitempty"`
}

type turnResponse struct {
	ResponseText      string `json:"response_text"`
	ContinuationState []byte `json:"continuation_state,omitempty"`
	Completed         bool   `json:"completed"`
}

func (s *Server) handleTurn(c *gin.Context) {
	conversationID := c.Param("id")
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.service.Process(c.Request.Context(), req.UserID, conversationID, req.Message, req.ContinuationState)
	if err != nil {
		s.logger.Error("turn failed for conversation %s: %v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, turnResponse{
		ResponseText:      result.ResponseText,
		ContinuationState: result.ContinuationState,
		Completed:         result.Completed,
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving and blocks until the listener fails or closes.
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
