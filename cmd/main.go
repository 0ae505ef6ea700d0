package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	"upkeep"
	"upkeep/internal/api/handler/endpoints"
	"upkeep/internal/api/models"
	"upkeep/internal/api/repo"
	"upkeep/internal/api/service"
	"upkeep/internal/api/websocket"
	"upkeep/internal/cache"
	"upkeep/internal/notify"
)

func main() {
	upkeep.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if upkeep.GetConfig().Mode == "dev" {
		if err := upkeep.DB.AutoMigrate(
			&models.User{},
			&models.Property{},
			&models.Job{},
		); err != nil {
			upkeep.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		upkeep.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(upkeep.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	hub := websocket.NewHub(upkeep.Logger)
	go hub.Run()
	upkeep.Logger.Info().Msg("Notification hub started")

	cfg := upkeep.GetConfig()
	localCache := cache.New(upkeep.Redis, upkeep.Logger)
	userRepo := repo.NewUserRepository()
	jobRepo := repo.NewJobRepository()

	gateway := notify.NewGateway(userRepo, localCache, upkeep.Logger,
		notify.NewPushChannel(hub),
		notify.NewEmailChannel(notify.SMTPConfig{
			Host:     cfg.SmtpConfig.Host,
			Port:     cfg.SmtpConfig.Port,
			Username: cfg.SmtpConfig.Username,
			Password: cfg.SmtpConfig.Password,
			From:     cfg.SmtpConfig.From,
			UseTLS:   cfg.SmtpConfig.UseTLS,
		}),
		notify.NewSMSChannel(cfg.SmsConfig.APIKey, cfg.SmsConfig.Sender),
	)

	engine := service.NewSyncEngine(jobRepo, localCache, upkeep.Bus, gateway, upkeep.Logger)
	if err := engine.Start(); err != nil {
		upkeep.Logger.Fatal().Err(err).Msg("Failed to start sync engine")
	}
	defer engine.Stop()

	monitor := service.NewHighPriorityMonitor(engine, jobRepo, gateway, upkeep.Bus, upkeep.Logger)
	if err := monitor.Start(); err != nil {
		upkeep.Logger.Fatal().Err(err).Msg("Failed to start high priority monitor")
	}
	defer monitor.Stop()

	jobService := service.NewJobService(jobRepo, engine, upkeep.Bus, gateway, upkeep.Logger)
	userService := service.NewUserService(localCache)

	endpoints.JobHandler(router, jobService, engine, monitor)
	endpoints.UserHandler(router, userService)
	endpoints.PropertyHandler(router)
	endpoints.WebSocketHandler(router, hub)

	defer upkeep.Bus.Close()

	upkeep.Logger.Debug().Msgf("Starting Upkeep API on port %s", upkeep.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		upkeep.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}
