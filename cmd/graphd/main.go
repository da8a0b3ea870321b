// Package main is the entry point for the graphd query engine.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/auth"
	"github.com/ali01/graphd/internal/config"
	"github.com/ali01/graphd/internal/db"
	"github.com/ali01/graphd/internal/index"
	"github.com/ali01/graphd/internal/metadata"
	"github.com/ali01/graphd/internal/query"
	"github.com/ali01/graphd/internal/schema"
	"github.com/ali01/graphd/internal/session"
	"github.com/ali01/graphd/internal/storage"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	return log
}

func main() {
	log := newLogger()

	// Set up panic recovery
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("graphd panic recovered: %v", r)
			log.Errorf("Stack trace:\n%s", debug.Stack())
			os.Exit(1)
		}
	}()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.NewDB(cfg.GetDBConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// database is closed after the session/query managers are stopped.

	if err := database.ExecuteSchema(storage.PostgresSchema); err != nil {
		log.Fatalf("Failed to initialize storage schema: %v", err)
	}

	storageClient := storage.NewPostgresStorage(database.DB)

	schemaMgr := schema.New(schema.NewMemoryKV(), log.WithField("component", "schema"))
	metadataMgr := metadata.New()
	indexMgr := index.New(log.WithField("component", "index"))
	sessionMgr := session.New(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		cfg.Engine.MaxConnections,
		cfg.Engine.SessionIdleTimeout,
		log.WithField("component", "session"),
	)
	queryMgr := query.New(log.WithField("component", "query"))

	authCfg := cfg.Auth.ToAuthConfig(cfg.Engine.SessionIdleTimeout)
	if cfg.Auth.EnableAuthorize {
		if _, err := metadataMgr.CreateUser(cfg.Auth.DefaultUsername, mustHash(cfg.Auth.DefaultPassword), true); err != nil {
			log.Warnf("Default user bootstrap skipped: %v", err)
		}
	}
	authenticator := auth.Factory{}.Create(authCfg, catalogVerifier(metadataMgr, authCfg))

	ctx, cancelBackground := context.WithCancel(context.Background())
	sessionMgr.StartCleanupTask(ctx)

	engine := &Engine{
		Ctx:           ctx,
		Config:        cfg,
		Log:           log,
		Schema:        schemaMgr,
		Metadata:      metadataMgr,
		Index:         indexMgr,
		Storage:       storageClient,
		Sessions:      sessionMgr,
		Queries:       queryMgr,
		Authenticator: authenticator,
	}

	router := gin.Default()
	RegisterRoutes(router, engine)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("HTTP server panic recovered: %v", r)
				log.Errorf("Stack trace:\n%s", debug.Stack())
				quit <- syscall.SIGTERM
			}
		}()

		log.Infof("Starting graphd admin surface on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Info("Shutting down graphd...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Info("Stopping background tasks...")
	sessionMgr.StopCleanupTask()
	cancelBackground()

	log.Info("Closing database connection...")
	if err := database.Close(); err != nil {
		log.Warnf("Error closing database: %v", err)
	}

	log.Info("graphd exiting")
}

func mustHash(password string) string {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return password
	}
	return hash
}

// catalogVerifier checks credentials against the catalog's user records,
// falling back to the configured bootstrap username/password so a fresh
// cluster with no users yet still admits its first admin connection.
func catalogVerifier(metadataMgr *metadata.Manager, cfg auth.Config) auth.UserVerifier {
	return func(username, password string) (bool, error) {
		rec, err := metadataMgr.GetUser(username)
		if err != nil {
			return username == cfg.DefaultUsername && password == cfg.DefaultPassword, nil
		}
		if rec.Locked {
			return false, nil
		}
		return auth.VerifyPassword(password, rec.PasswordHash), nil
	}
}
