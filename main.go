package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"messenger-service/internal/cache"
	"messenger-service/internal/db"
	"messenger-service/internal/email"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
	"messenger-service/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisCache, err := cache.Connect(ctx, getEnv("REDIS_ADDR", "localhost:6379"), os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "messenger.events"))
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "messenger.audit"),
		"messenger-service", getEnv("ENVIRONMENT", "development"))

	hub := realtime.NewHub()
	notifier := realtime.NewNotifier(hub)
	relay := realtime.NewRelay(redisCache.Client(), notifier)
	notifier.SetRelay(relay)
	go relay.Run(ctx)

	presence := realtime.NewPresence(redisCache, notifier)
	typing := realtime.NewTyping(redisCache, notifier)

	userRepo := repositories.NewUserRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	participantRepo := repositories.NewParticipantRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	contactRepo := repositories.NewContactRepo(database)
	requestRepo := repositories.NewRequestRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	recent := cache.NewRecentMessages(redisCache)
	convCache := cache.NewConversations(redisCache)

	tokens := middleware.NewTokens(getEnv("JWT_SECRET", "dev-secret"), "messenger-service", 24*time.Hour)

	var mail email.Sender = email.NoopSender{}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		mail = email.NewSMTPSender(host, getEnv("SMTP_PORT", "587"),
			os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"),
			getEnv("SMTP_FROM", "no-reply@messenger.local"))
	}

	var store storage.ObjectStorage = storage.NoopStorage{}
	if baseURL := os.Getenv("MEDIA_BASE_URL"); baseURL != "" {
		store = storage.NewHTTPStorage(baseURL, os.Getenv("MEDIA_API_KEY"))
	}

	authHandler := handlers.NewAuthHandler(userRepo, tokens, redisCache, mail, audit)
	userHandler := handlers.NewUserHandler(userRepo, presence)
	convHandler := handlers.NewConversationHandler(convRepo, participantRepo, convCache, notifier)
	participantHandler := handlers.NewParticipantHandler(participantRepo, notifier)
	messageHandler := handlers.NewMessageHandler(messageRepo, participantRepo, recent, store, notifier, audit)
	contactHandler := handlers.NewContactHandler(contactRepo, userRepo)
	friendRequestHandler := handlers.NewFriendRequestHandler(requestRepo, contactRepo, notificationRepo)
	joinRequestHandler := handlers.NewJoinRequestHandler(requestRepo, participantRepo, convRepo, notificationRepo, notifier)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	uploadHandler := handlers.NewUploadHandler(store)
	wsHandler := realtime.NewHandler(hub, presence, typing)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/password-reset/request", authHandler.RequestPasswordReset)
	router.POST("/auth/password-reset", authHandler.ResetPassword)
	router.GET("/auth/verify-email", authHandler.VerifyEmail)

	authMiddleware := middleware.AuthMiddleware(tokens)
	api := router.Group("/", authMiddleware)

	api.GET("/users/me", userHandler.Me)
	api.PATCH("/users/me", userHandler.UpdateProfile)
	api.GET("/users/search", userHandler.SearchUsers)
	api.GET("/users/:userId", userHandler.GetUser)
	api.GET("/users/:userId/status", userHandler.GetUserStatus)

	api.POST("/conversations", convHandler.Create)
	api.GET("/conversations", convHandler.List)
	api.GET("/conversations/:conversationId", convHandler.Get)
	api.PATCH("/conversations/:conversationId", convHandler.Update)
	api.DELETE("/conversations/:conversationId", convHandler.Deactivate)

	api.GET("/conversations/:conversationId/participants", participantHandler.List)
	api.POST("/conversations/:conversationId/participants", participantHandler.Add)
	api.PATCH("/conversations/:conversationId/participants/:userId", participantHandler.UpdateRole)
	api.DELETE("/conversations/:conversationId/participants/:userId", participantHandler.Remove)

	api.GET("/conversations/:conversationId/messages", messageHandler.List)
	api.POST("/conversations/:conversationId/messages", messageHandler.Create)
	api.POST("/conversations/:conversationId/messages/files", messageHandler.CreateWithFiles)
	api.PATCH("/messages/:messageId", messageHandler.Update)

	api.POST("/conversations/:conversationId/join-requests", joinRequestHandler.Create)
	api.GET("/conversations/:conversationId/join-requests", joinRequestHandler.List)
	api.PATCH("/join-requests/:requestId", joinRequestHandler.Respond)

	api.POST("/contacts", contactHandler.Create)
	api.GET("/contacts", contactHandler.List)
	api.PATCH("/contacts/:contactId", contactHandler.UpdateAlias)
	api.DELETE("/contacts/:contactId", contactHandler.Delete)

	api.POST("/friend-requests", friendRequestHandler.Create)
	api.GET("/friend-requests", friendRequestHandler.List)
	api.PATCH("/friend-requests/:requestId", friendRequestHandler.Respond)

	api.POST("/uploads", uploadHandler.Upload)
	api.DELETE("/uploads", uploadHandler.Delete)

	api.GET("/notifications", notificationHandler.List)
	api.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
	api.PATCH("/notifications/:notificationId/read", notificationHandler.MarkRead)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := getEnv("PORT", "8080")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
