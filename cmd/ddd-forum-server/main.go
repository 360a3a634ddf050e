package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kshyun28/ddd-forum/internal/config"
	"github.com/kshyun28/ddd-forum/internal/credentials"
	"github.com/kshyun28/ddd-forum/internal/database"
	"github.com/kshyun28/ddd-forum/internal/server"
	"github.com/kshyun28/ddd-forum/internal/users"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	config.Load()

	logger := initLogger()
	defer logger.Sync()
	logger.Info("Configuration loaded",
		zap.String("database_driver", config.Database().Driver))

	db, err := openDatabase()
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	ctx := context.Background()
	if err := database.CreateTables(ctx, db, (*users.UserSchema)(nil)); err != nil {
		logger.Fatal("Failed to create tables", zap.Error(err))
	}

	health := database.NewHealthManager(logger)
	health.AddChecker(database.NewDatabaseHealthChecker(db))
	if err := health.StartupHealthCheck(ctx); err != nil {
		logger.Fatal("Startup health check failed", zap.Error(err))
	}

	userService := users.NewUserService(users.NewUserStore(db), credentials.NewIssuer(), logger)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Options{
		Logger:         logger,
		Health:         health,
		MaxRequestSize: config.Http().MaxRequestSize,
		Routes: []server.RouteRegistrar{
			users.NewUserHandlers(userService, logger),
		},
	})

	addr := config.Http().Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := setupSignalHandler(srv, db, logger)

	logger.Info("Starting DDD-Forum server", zap.String("address", addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

func openDatabase() (*bun.DB, error) {
	dbConfig := config.Database()

	switch dbConfig.Driver {
	case database.DriverSQLite:
		return database.Open(database.Options{
			Driver: database.DriverSQLite,
			DSN:    dbConfig.SQLite.Path,
		})
	case database.DriverPostgres, "":
		pg := dbConfig.Postgres
		return database.Open(database.Options{
			Driver:             database.DriverPostgres,
			DSN:                pg.DSN(),
			SearchPath:         pg.SchemaName,
			MaxOpenConnections: pg.MaxOpenConnections,
			ReadTimeout:        pg.ReadTimeoutDuration(),
			WriteTimeout:       pg.WriteTimeoutDuration(),
		})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", dbConfig.Driver)
	}
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(logConfig.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupSignalHandler(srv *http.Server, db *bun.DB, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := db.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
