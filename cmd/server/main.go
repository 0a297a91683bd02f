package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"chatwire/infrastructure/cache"
	"chatwire/infrastructure/db"
	"chatwire/infrastructure/presence"
	"chatwire/infrastructure/ws"
	httpHandler "chatwire/internal/delivery/http"
	"chatwire/internal/delivery/websocket"
	"chatwire/internal/repository"
	"chatwire/internal/usecase"
	"chatwire/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("godotenv: error loading .env file")
	}

	ctx := context.Background()

	mongoDbHost := os.Getenv("MONGODB_URI")
	mongoDbName := os.Getenv("MONGODB_DATABASE")
	mongoDb, err := db.NewMongoStore(ctx, mongoDbHost, mongoDbName)
	if err != nil {
		panic(err)
	}

	log.Println("Connected to MongoDB")

	if err := mongoDb.EnsureIndexes(ctx); err != nil {
		log.Printf("EnsureIndexes error: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongoDb.DB)
	chatRepo := repository.NewChatRepository(mongoDb.DB)
	messageRepo := repository.NewMessageRepository(mongoDb.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(mongoDb.DB)

	// Initialize JWT manager
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-this-in-production" // Default for development
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET in .env for production")
	}

	// Access token: 15 minutes, Refresh token: 30 days
	jwtManager := jwt.NewJWTManager(jwtSecret, 15*time.Minute, 30*24*time.Hour)

	// Presence and unread counters live in Redis when configured, so they
	// survive a process restart; otherwise they fall back to in-memory
	// implementations (single server, disposable state).
	var presenceReg presence.Registry
	var unreadCounter cache.UnreadCounter

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr != "" {
		log.Printf("Using Redis presence/unread store at %s", redisAddr)
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			panic(err)
		}
		presenceReg = presence.NewRedisRegistry(redisClient)
		unreadCounter = cache.NewRedisUnreadCounter(redisClient)
	} else {
		log.Println("Using in-memory presence/unread store (single server)")
		presenceReg = presence.NewMemoryRegistry()
		unreadCounter = cache.NewMemoryUnreadCounter()
	}

	hub := ws.NewHub()
	go hub.Run()

	log.Println("Websocket is running")

	// Initialize use cases
	authUc := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, jwtManager)
	userUc := usecase.NewUserUseCase(userRepo)
	chatUc := usecase.NewChatUsecase(chatRepo, userRepo, messageRepo, presenceReg, unreadCounter)
	deliveryUc := usecase.NewDeliveryUsecase(chatRepo, messageRepo, presenceReg, unreadCounter, hub)

	// CORS middleware
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:3000")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			// Handle preflight requests
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Initialize handlers
	websocketH := websocket.NewWebsocketHandler(hub, presenceReg, authUc, userUc, deliveryUc)
	httpH := httpHandler.NewHttpHandler(chatUc, userUc)
	authH := httpHandler.NewAuthHandler(authUc)
	authMiddleware := httpHandler.NewAuthMiddleware(authUc)

	hub.SetOnClientUnregister(func(client *ws.UserClient) error {
		return websocketH.HandleUnregisterClient(client)
	})

	// Map routes
	httpHandler.MapHttpRoutes(router, *httpH, *websocketH, *authH, authMiddleware)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP server is running on :%s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
