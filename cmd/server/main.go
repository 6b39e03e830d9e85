package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thunderstudio021/fitly/internal/admin"
	"github.com/thunderstudio021/fitly/internal/agent"
	"github.com/thunderstudio021/fitly/internal/auth"
	"github.com/thunderstudio021/fitly/internal/config"
	"github.com/thunderstudio021/fitly/internal/conversation"
	"github.com/thunderstudio021/fitly/internal/database"
	"github.com/thunderstudio021/fitly/internal/home"
	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/middleware"
	"github.com/thunderstudio021/fitly/internal/profile"
	"github.com/thunderstudio021/fitly/internal/session"
	"github.com/thunderstudio021/fitly/internal/storage"
	"github.com/thunderstudio021/fitly/internal/supabase"
	"github.com/thunderstudio021/fitly/internal/tracking"
	"github.com/thunderstudio021/fitly/internal/user"
	"github.com/thunderstudio021/fitly/internal/video"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logs.LogJSON("FATAL", "Configuration error", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	if err := database.Connect(cfg.DBUrl, cfg.Production); err != nil {
		logs.LogJSON("FATAL", "Database connection error", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	if err := database.Migrate(
		&user.User{},
		&video.Video{},
		&tracking.Entry{},
		&conversation.Conversation{},
		&conversation.Message{},
	); err != nil {
		logs.LogJSON("FATAL", "Database migration error", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := storage.Init(ctx, cfg.Storage); err != nil {
		logs.LogJSON("FATAL", "Storage init error", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	supabaseClient := supabase.New(cfg.Supabase, cfg.AnonKey)

	// Sans AGENT_URL, les messages sont enregistrés sans réponse automatique
	var replier conversation.Replier
	if cfg.Agent.URL != "" {
		replier = agent.New(cfg.Agent.URL, cfg.Agent.APIKey, cfg.Agent.Timeout)
	}

	conversations := conversation.NewService(
		conversation.NewGormStore(database.DB),
		conversation.NewHub(),
		replier,
		conversation.Options{
			AgentName:      cfg.Assistant.AgentName,
			WhatsAppNumber: cfg.Assistant.WhatsAppNumber,
			ReplyTimeout:   cfg.Agent.Timeout,
		},
	)

	// Redis est facultatif : relais multi-instances et limitation de débit
	var counter middleware.Counter
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			logs.LogJSON("WARN", "Redis unavailable, running single instance", map[string]interface{}{"error": err})
		} else {
			defer rdb.Close()
			counter = rdb

			// Tant que l'abonnement n'est pas confirmé, les messages sont publiés localement
			relay := conversation.NewRedisRelay(rdb)
			if err := relay.Start(ctx, conversations); err != nil {
				logs.LogJSON("WARN", "Conversation relay unavailable, publishing locally", map[string]interface{}{"error": err})
			}
		}
	}

	// Une seule limite de messages, partagée par le REST et la WebSocket
	messageLimiter := middleware.NewLimiter(counter, cfg.RateLimit)

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.AccessLogger(gin.DefaultWriter), gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	r.Use(session.Load(user.FindByID))

	r.NoRoute(func(c *gin.Context) {
		color.Yellow("[404] %s %s (rota não encontrada)", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := auth.NewHandler(supabaseClient)
	profileHandler := profile.NewHandler(supabaseClient)
	conversationHandler := conversation.NewHandler(conversations, cfg.Assistant.RefreshInterval, messageLimiter)

	api := r.Group("/api")

	// Routes publiques
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/home", home.GetHome)
	api.GET("/shell", home.GetShell)
	api.GET("/videos", video.ListVideos)
	api.GET("/videos/:id", video.GetVideo)

	// WebSocket : le token arrive en query string
	api.GET("/assistant/ws", middleware.RequireUserMiddleware(), conversationHandler.Live)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PATCH("/me", profileHandler.UpdateMe)
		protected.POST("/logout", profileHandler.Logout)

		protected.POST("/integrations/upload", storage.UploadFile)

		protected.POST("/videos", middleware.AdminOnlyMiddleware(), video.CreateVideo)
		protected.POST("/videos/upload", middleware.AdminOnlyMiddleware(), video.UploadVideoFile)

		protected.GET("/tracking", tracking.ListEntries)
		protected.GET("/tracking/progress", tracking.GetProgress)
		protected.POST("/tracking", tracking.CreateEntry)

		protected.GET("/conversations", conversationHandler.List)
		protected.POST("/conversations", conversationHandler.Create)
		protected.GET("/conversations/:id", conversationHandler.Get)
		protected.POST("/conversations/:id/messages",
			middleware.RateLimitMiddleware(messageLimiter, conversation.MessageScope),
			conversationHandler.AddMessage)
		protected.GET("/assistant/whatsapp", conversationHandler.WhatsApp)
	}

	adminGroup := protected.Group("/admin")
	adminGroup.Use(middleware.AdminOnlyMiddleware())
	{
		adminGroup.GET("/stats", admin.GetDashboardStats)
		adminGroup.GET("/charts/:type", admin.GetChartData)
		adminGroup.GET("/top-users", admin.GetTopUsers)

		adminGroup.GET("/users", user.SearchUsers)
		adminGroup.GET("/users/:id", user.GetUser)
		adminGroup.PATCH("/users/:id/role", user.SetRole)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logs.LogJSON("INFO", "Server started", map[string]interface{}{"extra": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.LogJSON("FATAL", "Server error", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logs.LogJSON("INFO", "Shutting down server", map[string]interface{}{"extra": sig.String()})
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.LogJSON("ERROR", "Server shutdown error", map[string]interface{}{"error": err})
	}
	conversations.Wait()
}
