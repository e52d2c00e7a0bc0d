package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"golinks/internal/handler"
	"golinks/internal/i18n"
	"golinks/internal/middleware"
	"golinks/internal/repository"
	"golinks/internal/service"
	"golinks/internal/shortcode"
	"golinks/internal/store"
	"golinks/pkg/logging"
)

func initConfig() {
	// A local .env may carry the DSN and Redis credentials.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("Server exiting")
}

func main() {
	initConfig()

	logging.InitLoggerFromConfig()
	logging.Logger.Info("Application started")

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()

	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		logging.Logger.Fatal("Failed to load i18n bundles", zap.Error(err))
	}

	linkService := service.NewLinkService(
		store.NewGormStore(repository.DB),
		shortcode.NewRandomGenerator(),
		repository.RedisPool,
	)
	statsService := service.NewStatsService(repository.DB, repository.RedisPool)
	linkHandler := handler.NewLinkHandler(linkService, statsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(bundle))

	r.LoadHTMLGlob("templates/*")
	linkHandler.RegisterRoutes(r)

	// Flush Redis PV/UV counters into daily_stats every ten minutes.
	c := cron.New()
	_, addErr := c.AddFunc("*/10 * * * *", func() {
		if err := statsService.FlushDailyStats(); err != nil {
			logging.Logger.Error("Daily stats flush failed", zap.Error(err))
		}
	})
	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule stats flush", zap.Error(addErr))
	}
	c.Start()
	defer c.Stop()

	startServer(r)
}
