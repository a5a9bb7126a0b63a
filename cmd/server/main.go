package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/rentnest/rentchat-backend/internal/cache"
	"github.com/rentnest/rentchat-backend/internal/external"
	"github.com/rentnest/rentchat-backend/internal/handlers"
	"github.com/rentnest/rentchat-backend/internal/hub"
	"github.com/rentnest/rentchat-backend/internal/middleware"
	"github.com/rentnest/rentchat-backend/internal/repository"
	"github.com/rentnest/rentchat-backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "RentNest Chat Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	var chatCache *cache.ChatCache
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		chatCache = cache.NewChatCache(nil)
	} else {
		log.Println("Redis cache connected successfully")
		chatCache = cache.NewChatCache(redisCache)
	}

	// External collaborators (best-effort; summaries degrade when absent)
	var userDirectory external.UserDirectory
	if base := os.Getenv("IDENTITY_SERVICE_URL"); base != "" {
		userDirectory = external.NewHTTPUserDirectory(base)
	} else {
		log.Println("WARNING: IDENTITY_SERVICE_URL not set, conversation lists will omit peer profiles")
	}
	var listingCatalog external.ListingCatalog
	if base := os.Getenv("LISTING_SERVICE_URL"); base != "" {
		listingCatalog = external.NewHTTPListingCatalog(base)
	} else {
		log.Println("WARNING: LISTING_SERVICE_URL not set, conversation lists will omit listing snippets")
	}

	// Initialize repositories
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Delivery router and service
	liveHub := hub.NewHub()
	chatService := service.NewChatService(conversationRepo, messageRepo, liveHub, userDirectory, listingCatalog)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, chatCache)
	wsHandler := handlers.NewWebSocketHandler(chatService, liveHub, chatCache)

	// Protected routes
	api := app.Group("/api", middleware.OriginAllowed(), middleware.AuthRequired())
	api.Get("/conversations", chatHandler.GetConversations)
	api.Post("/conversations", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
	}), chatHandler.StartConversation)
	api.Get("/conversations/:id/messages", chatHandler.GetMessages)
	api.Post("/conversations/:id/messages", chatHandler.SendMessage)
	api.Post("/conversations/:id/read", chatHandler.MarkRead)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "RentNest Chat is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
