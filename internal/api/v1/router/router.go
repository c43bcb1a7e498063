package router

import (
	"context"
	"net/http"
	"time"

	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the whole service: database pool, event publisher, repositories,
// services, handlers and middleware. The returned pool is owned by the
// caller and must be closed on shutdown.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	// 1. Open the connection pool and verify it.
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	poolCfg.MaxConns = 25
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Resolve the JWT secret. Production keeps it in Secret Manager.
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		secrets, err := service.NewSecretManagerService(ctx, cfg.GCPProjectID)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		defer secrets.Close()
		jwtSecret, err = secrets.GetSecret(ctx, cfg.JWTSecretName)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Str("secret_name", cfg.JWTSecretName).Msg("JWT secret loaded from Secret Manager")
	}

	// 3. Event publisher for the session-tracking collaborator. Optional:
	// without a project ID the engine runs but publishes nothing.
	var pub pubsub.Publisher
	if cfg.GCPProjectID != "" {
		p, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		pub = p
	} else {
		logger.Warn().Msg("GCP_PROJECT_ID not set, enrollment events disabled")
	}

	// 4. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 5. Repositories & services & handlers
	store := repository.NewEnrollmentStore(pool)
	courseRepo := repository.NewCourseRepo(pool)
	ledgerRepo := repository.NewLedgerRepo(pool)
	bookingRepo := repository.NewBookingQueryRepo(pool)

	enrollmentSvc := service.NewEnrollmentService(store, pub, service.EnrollmentTopics{
		Booked:    cfg.PubSubBookedTopic,
		Cancelled: cfg.PubSubCancelledTopic,
	}, logger)
	querySvc := service.NewBookingQueryService(courseRepo, bookingRepo, ledgerRepo)

	courseHandler := handler.NewCourseHandler(enrollmentSvc, querySvc, validate, logger)
	userHandler := handler.NewUserHandler(querySvc, logger)

	// 6. Middleware
	authMiddleware := middleware.AuthMiddleware(jwtSecret, logger)

	// 7. Mount routes under /api/v1
	apiV1Mux := http.NewServeMux()
	courseHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Mux))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 8. CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), pool, nil
}
