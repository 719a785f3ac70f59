package main

import (
	"context"
	"log"

	"parley/config"
	"parley/internal/handler"
	"parley/internal/redis"
	"parley/internal/repository"
	"parley/internal/server"
	"parley/internal/services"
	"parley/internal/websocket"
	"parley/pkg/database"
	"parley/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	publisher := redis.NewPublisher(redisClient)
	subscriber := redis.NewSubscriber(redisClient)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := services.NewAuthService(userRepo, sessionRepo, cfg.SessionSecret, cfg.SessionExpiryMin, cfg.BcryptCost)
	userService := services.NewUserService(userRepo, cfg.BcryptCost)
	conversationService := services.NewConversationService(conversationRepo, messageRepo, userRepo)

	hub := websocket.NewHub()
	authorizer := websocket.NewChannelAuthorizer(conversationService)
	gateway := websocket.NewHandler(authService, userService, conversationService, authorizer, hub, publisher, l)
	bridge := websocket.NewBridge(subscriber, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			l.Errorf("broker bridge stopped: %s", err)
		}
	}()

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(&server.Handlers{
		User:         handler.NewUserHandler(authService, userService),
		Conversation: handler.NewConversationHandler(conversationService),
		Message:      handler.NewMessageHandler(conversationService, publisher, l),
		Gateway:      gateway,
	}, authService)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
