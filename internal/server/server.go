package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"launchpad/internal/config"
	custommiddleware "launchpad/internal/middleware"
	"launchpad/internal/payments"
	"launchpad/internal/repository"
	"launchpad/internal/service"
	"launchpad/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	deploymentRepo := repository.NewDeploymentRepository(db)
	credentialsRepo := repository.NewCredentialsRepository(db)

	// External payment provider client
	provider := payments.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.TestAPIKey,
		cfg.Provider.LiveAPIKey,
		cfg.Provider.CallTimeout,
	)

	// Initialize services
	pacer := service.NewDelayPacer(cfg.Deploy.BatchPacing)
	deploymentService := service.NewDeploymentService(
		productRepo, deploymentRepo, credentialsRepo,
		provider, pacer, cfg.Deploy.PromotionTimeout, logger,
	)
	statusService := service.NewStatusService(productRepo, deploymentRepo, credentialsRepo, logger)
	productService := service.NewProductService(productRepo)

	// Initialize handlers
	deploymentHandler := transport.NewDeploymentHandler(deploymentService, statusService, logger)
	productHandler := transport.NewProductHandler(productService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Promotion endpoints hit the external provider, so they carry a
	// per-creator rate limit on top of auth.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Deploy.RateLimitPerMin,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:deploy",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(rateLimit)
		deploymentHandler.RegisterRoutes(r, authMiddleware)
	})
	productHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 3 * time.Minute, // batch promotions outlive normal requests
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
