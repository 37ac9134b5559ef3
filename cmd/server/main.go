// Package main runs the tutoring session scheduler HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tutorsync/backend/config"
	"github.com/tutorsync/backend/internal/calendar"
	"github.com/tutorsync/backend/internal/meetings"
	"github.com/tutorsync/backend/internal/metrics"
	"github.com/tutorsync/backend/internal/middleware"
	"github.com/tutorsync/backend/internal/recordings"
	"github.com/tutorsync/backend/internal/sessions"
	"github.com/tutorsync/backend/pkg/redis"
	"github.com/tutorsync/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Log)
	defer logger.Sync()

	ctx := context.Background()
	upstreamTimeout := time.Duration(cfg.Upstream.TimeoutSec) * time.Second

	// Token cache: shared via Redis when configured, in-process otherwise.
	var tokenCache meetings.TokenCache = meetings.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-process token cache", zap.Error(err))
		} else {
			defer rdb.Close()
			tokenCache = meetings.NewRedisCache(rdb)
		}
	}

	meetingClient := meetings.NewClient(cfg.Zoom, tokenCache, upstreamTimeout, logger)

	calendarProvider, err := calendar.NewGoogleProvider(ctx, cfg.Google, upstreamTimeout, logger)
	if err != nil {
		logger.Fatal("calendar provider", zap.Error(err))
	}

	// Recording store is optional. With one configured, listings run the
	// batched matcher; without, recording status is looked up per event.
	var store recordings.Store
	switch {
	case cfg.Drive.Enabled:
		driveStore, err := recordings.NewDriveStore(ctx, cfg.Google, upstreamTimeout, logger)
		if err != nil {
			logger.Warn("drive recording store disabled", zap.Error(err))
		} else {
			store = driveStore
			logger.Info("recording store: google drive")
		}
	case cfg.AWS.Region != "" && cfg.AWS.RecordingsBucket != "":
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			RecordingsBucket:     cfg.AWS.RecordingsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
			Timeout:              upstreamTimeout,
		}, logger)
		if err != nil {
			logger.Warn("s3 recording store disabled", zap.Error(err))
		} else {
			store = recordings.NewS3Store(s3Client, logger)
			logger.Info("recording store: s3", zap.String("bucket", cfg.AWS.RecordingsBucket))
		}
	}

	sessionService := sessions.NewService(calendarProvider, meetingClient, store, logger)
	sessionHandler := sessions.NewHandler(sessionService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", metrics.Handler())

	sessionHandler.RegisterRoutes(router.Group("/api"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.FilePath == "" {
		zc := zap.NewProductionConfig()
		zc.EncoderConfig = encoderCfg
		logger, _ := zc.Build()
		return logger
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, zap.InfoLevel)
	return zap.New(core)
}
