package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/handlers"
	"task-tracker/internal/services"
	"task-tracker/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	log := setupLogger(cfg.Server.Environment)
	log.Info("Application start")

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	notificationWorker := worker.NewWorker(redisClient, cfg.Worker.Queue, log)
	notificationWorker.RegisterHandler(worker.JobTypeStatusChangeEmail, services.StatusChangeEmailHandler(log))
	notificationWorker.Start(cfg.Worker.Concurrency)

	tokens := services.NewTokenService(&cfg.Auth)
	userService := services.NewUserService(tokens, cfg.Auth.BCryptCost)
	notifier := services.NewQueueNotifier(worker.NewJobQueue(redisClient, cfg.Worker.Queue), log)
	taskService := services.NewTaskService(notifier, log)

	router := handlers.NewRouter(db, cfg, log, tokens, userService, taskService)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	notificationWorker.Stop()

	log.Info("Application stopped")
}

func setupLogger(env string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch env {
	case "production":
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	return logrus.NewEntry(log).WithField("service", "task-tracker")
}
