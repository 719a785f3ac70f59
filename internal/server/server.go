package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parley/config"
	"parley/internal/handler"
	"parley/internal/metrics"
	"parley/internal/middleware"
	"parley/internal/services"
	"parley/internal/transport/httpdto"
	"parley/internal/websocket"
	"parley/pkg/database"
	"parley/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	db         *gorm.DB
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Gateway      *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger, db *gorm.DB) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		db:     db,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(metrics.GinMiddleware())

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse("pong", gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse("healthy", gin.H{"status": "healthy"}))
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Session identity travels in the query string; the gateway validates it
	// at the protocol-connect step after the upgrade.
	s.engine.GET("/ws", handlers.Gateway.Connect)

	auth := middleware.AuthMiddleware(authService)

	users := s.engine.Group("/api/users")
	{
		users.POST("/signup", handlers.User.SignUp)
		users.POST("/login", handlers.User.Login)
		users.POST("/logout", auth, handlers.User.Logout)
		users.GET("/current", auth, handlers.User.Current)
		users.GET("/:id", auth, handlers.User.GetByID)
		users.PUT("/username", auth, handlers.User.UpdateUsername)
		users.PUT("/email", auth, handlers.User.UpdateEmail)
		users.PUT("/phone", auth, handlers.User.UpdatePhone)
		users.PUT("/password", auth, handlers.User.UpdatePassword)
		users.DELETE("/:id", auth, handlers.User.Delete)
	}

	conversations := s.engine.Group("/api/conversations", auth)
	{
		conversations.POST("/private", handlers.Conversation.CreatePrivate)
		conversations.POST("/group", handlers.Conversation.CreateGroup)
		conversations.GET("", handlers.Conversation.List)
		conversations.GET("/chats", handlers.Conversation.Chats)
		conversations.GET("/contacts", handlers.Conversation.Contacts)
		conversations.GET("/search/users", handlers.Conversation.SearchUsers)
		conversations.GET("/search/groups", handlers.Conversation.SearchGroups)
		conversations.GET("/:id", handlers.Conversation.GetByID)
		conversations.DELETE("/:id", handlers.Conversation.Delete)
		conversations.PUT("/:id/name", handlers.Conversation.UpdateName)
		conversations.GET("/:id/participants", handlers.Conversation.Participants)
		conversations.POST("/:id/participants", handlers.Conversation.AddParticipant)
		conversations.POST("/:id/participants/:userId/promote", handlers.Conversation.Promote)
		conversations.DELETE("/:id/participants/:userId", handlers.Conversation.RemoveParticipant)
		conversations.POST("/:id/block", handlers.Conversation.Block)
		conversations.POST("/:id/unblock", handlers.Conversation.Unblock)

		conversations.POST("/:id/messages", handlers.Message.Create)
		conversations.GET("/:id/messages", handlers.Message.List)
		conversations.DELETE("/:id/messages/:messageId", handlers.Message.Delete)
		conversations.DELETE("/:id/messages/:messageId/admin", handlers.Message.DeleteAsAdmin)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
