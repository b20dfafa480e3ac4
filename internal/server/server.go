// Package server assembles the application: config, connections,
// repositories, controllers, routes, and the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bazaarhq/bazaar/app/controllers"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/app/routes"
	"github.com/bazaarhq/bazaar/app/services"
	"github.com/bazaarhq/bazaar/config"
	"github.com/bazaarhq/bazaar/pkg/auth"
	"github.com/bazaarhq/bazaar/pkg/cache"
	"github.com/bazaarhq/bazaar/pkg/database"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/mail"
	"github.com/bazaarhq/bazaar/pkg/router"
	"github.com/bazaarhq/bazaar/pkg/storage"
)

// shutdownTimeout bounds the drain period after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// Server owns the HTTP listener and the connections behind it.
type Server struct {
	cfg    *config.Config
	router *router.Router
	http   *http.Server
	cache  *cache.Cache
	db     *mongo.Database
}

// New builds the full application from a loaded config.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger.Setup(cfg.AppEnv)

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("server: mongo: %w", err)
	}

	c, err := cache.Connect(ctx, cfg)
	if err != nil {
		// The cache is an optimization; a dead Redis must not stop boot.
		logger.Warn("redis unavailable, caching disabled", "err", err)
	}

	var disk storage.Disk
	if cfg.S3.Bucket != "" {
		disk, err = storage.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("server: s3: %w", err)
		}
	} else {
		disk = storage.NewLocal(cfg.UploadDir, "http://localhost:"+cfg.AppPort+"/"+cfg.UploadDir)
	}

	users, err := repositories.NewUserRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	products, err := repositories.NewProductRepository(ctx, db, c)
	if err != nil {
		return nil, err
	}

	issuer := auth.NewTokenIssuer(cfg)
	mailer := mail.New(cfg.SMTP)
	checkout := services.NewCheckoutService(users, products, mailer, cfg.BusinessEmail)

	r := router.New()
	routes.Register(r, routes.Controllers{
		Auth:    controllers.NewAuthController(users, issuer),
		Cart:    controllers.NewCartController(users),
		Product: controllers.NewProductController(products),
		Upload:  controllers.NewUploadController(disk, cfg.UploadDir, cfg.MaxUploadBytes),
		Order:   controllers.NewOrderController(checkout),
	}, issuer, users.RoleOf)

	return &Server{
		cfg:    cfg,
		router: r,
		cache:  c,
		db:     db,
		http: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           r.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Router exposes the route table for the route:list command.
func (s *Server) Router() *router.Router { return s.router }

// Run serves HTTP until the context is cancelled or SIGINT/SIGTERM
// arrives, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.http.Addr, "env", s.cfg.AppEnv)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := s.cache.Close(); err != nil {
		logger.Warn("redis close", "err", err)
	}
	if err := database.Disconnect(s.db); err != nil {
		logger.Warn("mongo disconnect", "err", err)
	}
	return nil
}
