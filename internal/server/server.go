package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"canopy-pos/internal/config"
	custommiddleware "canopy-pos/internal/middleware"
	"canopy-pos/internal/repository"
	"canopy-pos/internal/service"
	"canopy-pos/internal/session"
	"canopy-pos/internal/transport"

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

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "pos:ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","redis":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Register policy the terminals need before opening a session:
	// tax rate, regulated ceiling, and the scan-buffer idle window.
	router.Get("/api/pos/config", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"tax_rate":           cfg.POS.TaxRate,
			"regulated_category": cfg.POS.RegulatedCategory,
			"equivalent_limit_g": cfg.POS.EquivalentLimitG,
			"scan_idle_ms":       cfg.POS.ScanIdleMillis,
		})
	})

	// Initialize repositories
	operatorRepo := repository.NewOperatorRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	storeHoursRepo := repository.NewStoreHoursRepository(db)

	// Initialize the live-cart store
	sessionStore := session.NewStore(redisClient, time.Duration(cfg.POS.SessionTTLHours)*time.Hour)

	// Initialize services
	operatorService := service.NewOperatorService(operatorRepo, refreshTokenRepo, cfg.JWT.Secret)
	posService := service.NewPosService(
		productRepo,
		transactionRepo,
		promotionRepo,
		sessionStore,
		cfg.POS.TaxRate,
		cfg.POS.RegulatedCategory,
		cfg.POS.EquivalentLimitG,
	)
	promotionService := service.NewPromotionService(promotionRepo)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(operatorService, logger)
	posHandler := transport.NewPosHandler(posService, logger)
	productHandler := transport.NewProductHandler(productRepo, logger)
	transactionHandler := transport.NewTransactionHandler(posService, transactionRepo, logger)
	promotionHandler := transport.NewPromotionHandler(promotionService, logger)
	storeHoursHandler := transport.NewStoreHoursHandler(storeHoursRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	managerOnly := custommiddleware.RequireRole([]string{"manager"}, logger)

	// Register routes
	authHandler.RegisterRoutes(router, authMiddleware)
	posHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	transactionHandler.RegisterRoutes(router, authMiddleware)
	promotionHandler.RegisterRoutes(router, authMiddleware, managerOnly)
	storeHoursHandler.RegisterRoutes(router, authMiddleware, managerOnly)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
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

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
