package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"roomloop-backend/config"
	"roomloop-backend/handlers"
	"roomloop-backend/middleware"
	"roomloop-backend/models"
	"roomloop-backend/repository"
	"roomloop-backend/services"
	"roomloop-backend/tasks"
	"roomloop-backend/worker"
	"roomloop-backend/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	// Stores. MySQL when a DSN is configured, in-memory otherwise.
	var (
		roomRepo     repository.RoomRepository
		userRepo     repository.UserRepository
		messageRepo  repository.MessageRepository
		reactionRepo repository.ReactionRepository
	)
	if cfg.MySQLDSN != "" {
		db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to MySQL")
		}
		if err := db.AutoMigrate(
			&models.User{}, &models.UserRoom{},
			&models.Room{}, &models.RoomParticipant{}, &models.RoomInvite{},
			&models.Message{}, &models.Reaction{},
		); err != nil {
			logrus.WithError(err).Fatal("Failed to migrate schema")
		}
		roomRepo = repository.NewGormRoomRepo(db)
		userRepo = repository.NewGormUserRepo(db)
		messageRepo = repository.NewGormMessageRepo(db)
		reactionRepo = repository.NewGormReactionRepo(db)
		logrus.Info("Using MySQL store")
	} else {
		roomRepo = repository.NewInMemoryRoomRepo()
		userRepo = repository.NewInMemoryUserRepo()
		messageRepo = repository.NewInMemoryMessageRepo()
		reactionRepo = repository.NewInMemoryReactionRepo()
		logrus.Info("Using in-memory store")
	}

	// Redis adds the reaction cache and the mirror-repair worker.
	var (
		reactionCache services.ReactionCache
		repairer      services.MirrorRepairer
		taskClient    *tasks.Client
		taskWorker    *worker.Worker
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logrus.WithError(err).Fatal("Failed to connect to Redis")
		}
		reactionCache = repository.NewRedisReactionCache(rdb)

		taskClient = tasks.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		repairer = taskClient
		taskWorker = worker.New(cfg.RedisAddr, cfg.RedisPassword, userRepo)
		if err := taskWorker.Start(); err != nil {
			logrus.WithError(err).Fatal("Failed to start task worker")
		}
		logrus.Info("Redis cache and mirror-repair worker enabled")
	}

	hub := ws.NewHub()
	go hub.Run()

	mirror := services.NewMirrorWriter(userRepo, repairer)
	life := services.NewLifecycle(roomRepo, hub)
	access := services.NewAccessEvaluator(roomRepo, mirror)
	codes := services.NewCodeAllocator(roomRepo)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	roomSvc := services.NewRoomService(roomRepo, userRepo, codes, access, life, mirror)
	inviteSvc := services.NewInviteService(roomRepo, userRepo, life, mirror, hub)
	msgSvc := services.NewMessageService(messageRepo, userRepo, life, access, hub, cfg.MaxMessageLength)
	reactSvc := services.NewReactionService(reactionRepo, userRepo, life, access, hub, reactionCache)

	authH := handlers.NewAuthHandler(authSvc)
	roomH := handlers.NewRoomHandler(roomSvc, inviteSvc)
	msgH := handlers.NewMessageHandler(msgSvc)
	reactH := handlers.NewReactionHandler(reactSvc)
	wsH := handlers.NewWSHandler(hub)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.CORS(cfg.CORSOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)

		authed := api.Group("", middleware.Auth(cfg.JWTSecret))
		{
			authed.GET("/auth/me", authH.Me)

			authed.POST("/rooms", roomH.Create)
			authed.GET("/rooms/public", roomH.ListPublic)
			authed.GET("/rooms/all", roomH.ListAccessible)
			authed.GET("/rooms/user", roomH.ListMine)
			authed.GET("/rooms/:id", roomH.Get)
			authed.POST("/rooms/:id/join", roomH.Join)
			authed.POST("/rooms/:id/invite", roomH.Invite)

			authed.GET("/rooms/:id/messages", msgH.List)
			authed.POST("/rooms/:id/messages", msgH.Post)
			authed.GET("/rooms/:id/reactions", reactH.List)
			authed.POST("/rooms/:id/reactions", reactH.Post)
		}
	}
	router.GET("/ws", middleware.Auth(cfg.JWTSecret), wsH.Connect)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	if taskWorker != nil {
		taskWorker.Shutdown()
	}
	if taskClient != nil {
		taskClient.Close()
	}
	logrus.Info("Server exited")
}
