package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"iris-api/internal/config"
	"iris-api/internal/handlers"
	"iris-api/internal/inference"
	"iris-api/internal/middleware"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.ServerConfig
}

func New(cfg config.ServerConfig, mode string, service *inference.Service) *Server {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	s := &Server{
		router: router,
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes(service)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestLogger())
}

func (s *Server) setupRoutes(service *inference.Service) {
	h := handlers.NewHandler(service)

	s.router.GET("/", h.Index)
	s.router.GET("/health", h.Health)
	s.router.POST("/predict", h.Predict)
	s.router.POST("/predict/batch", h.PredictBatch)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
