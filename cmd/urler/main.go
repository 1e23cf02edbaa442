package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	grpcserver "github.com/byuly/Urler/internal/grpc"
	"github.com/byuly/Urler/internal/grpc/proto"
	"github.com/byuly/Urler/internal/app"
	"github.com/byuly/Urler/internal/config"
	"github.com/byuly/Urler/internal/log"
	"github.com/byuly/Urler/internal/middleware"
	"github.com/byuly/Urler/internal/notifier"
	"github.com/byuly/Urler/internal/repository"
	"github.com/byuly/Urler/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// newRouter создаёт маршрутизатор со всеми middleware и обработчиками
func newRouter(appInstance *app.App, svc *service.Service, cfg *config.Config, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.GzipMiddleware)
	r.Use(middleware.AuthMiddleware(svc, cfg, logger))

	// Регистрируем обработчики
	r.Post("/api/urls/shorten", appInstance.HandleShorten)
	r.Get("/api/urls/myurls", appInstance.HandleUserURLs)
	r.Get("/api/urls/analytics/{code}", appInstance.HandleURLAnalytics)
	r.Get("/api/urls/totalClicks", appInstance.HandleTotalClicks)
	r.Get("/api/urls/{code}/clicks/stream", appInstance.HandleClickStream)
	r.Get("/ping", appInstance.HandlePing)
	r.Group(func(r chi.Router) {
		r.Use(middleware.TrustedSubnetMiddleware(cfg.TrustedSubnet, logger))
		r.Get("/api/internal/stats", appInstance.HandleStats)
	})
	r.Get("/{code}", appInstance.HandleRedirect)

	return r
}

func main() {
	// Получаем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	logger := log.NewLogger()
	defer logger.Sync()

	// Подключаемся к базе данных, если задан DSN
	db, err := app.NewDB(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Выбираем хранилище: postgres, файл или память
	var repo repository.Repository
	switch {
	case db != nil:
		repo, err = repository.NewPostgresRepository(db, logger)
		if err != nil {
			logger.Fatal("Failed to create postgres repository", zap.Error(err))
		}
		logger.Info("Using postgres repository")
	case cfg.FileStoragePath != "":
		fileRepo, err := repository.NewFileRepository(cfg.FileStoragePath, logger)
		if err != nil {
			logger.Fatal("Failed to create file repository", zap.Error(err))
		}
		defer fileRepo.Close()
		repo = fileRepo
		logger.Info("Using file repository", zap.String("path", cfg.FileStoragePath))
	default:
		repo = repository.NewMemoryRepository()
		logger.Info("Using in-memory repository")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем диспетчер уведомлений о кликах
	hub := notifier.NewHub(logger)
	go hub.Run(ctx)

	svc := service.NewService(repo, hub, cfg.BaseURL, cfg.JWTSecret, logger)
	appInstance := app.NewApp(svc, db, hub, logger)

	r := newRouter(appInstance, svc, cfg, logger)

	httpServer := &http.Server{
		Addr:    cfg.RunAddr,
		Handler: r,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.RunAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Запускаем gRPC сервер, если задан адрес
	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("Failed to listen for gRPC", zap.Error(err))
		}
		grpcSrv = grpc.NewServer(
			grpc.ChainUnaryInterceptor(
				grpcserver.LoggingInterceptor(logger),
				grpcserver.AuthInterceptor(svc, logger),
				grpcserver.TrustedSubnetInterceptor(cfg.TrustedSubnet, logger),
			),
		)
		proto.RegisterUrlerServiceServer(grpcSrv, grpcserver.NewServer(svc, db, logger))
		go func() {
			logger.Info("Starting gRPC server", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(listener); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	cancel()

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}
