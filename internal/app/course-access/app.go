// Package courseaccess собирает сервис доступа к курсам: подключение к базе,
// миграции, кеш, брокер уведомлений, бизнес-сервисы и HTTP-сервер.
package courseaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-access/internal/cache"
	"github.com/magabrotheeeer/course-access/internal/config"
	libjwt "github.com/magabrotheeeer/course-access/internal/lib/jwt"
	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/migrations"
	"github.com/magabrotheeeer/course-access/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/course-access/internal/services/auth"
	courseservice "github.com/magabrotheeeer/course-access/internal/services/course"
	enrollmentservice "github.com/magabrotheeeer/course-access/internal/services/enrollment"
	entitlementservice "github.com/magabrotheeeer/course-access/internal/services/entitlement"
	"github.com/magabrotheeeer/course-access/internal/storage/repository"
)

// App инкапсулирует зависимости запущенного сервиса.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New создает приложение: устанавливает соединения, применяет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	entitlementService := entitlementservice.New(db, logger)
	courseService := courseservice.New(db, cacheRedis, logger)
	enrollmentService := enrollmentservice.New(db, rabbitmq.NewNotifier(rabbitCh), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteServices{
		Auth:        authService,
		Entitlement: entitlementService,
		Course:      courseService,
		Enrollment:  enrollmentService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или фатальной ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Warn("failed to close database connection", sl.Err(cerr))
		}
		if cerr := a.rabbitConn.Close(); cerr != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(cerr))
		}
		return err
	}
}
