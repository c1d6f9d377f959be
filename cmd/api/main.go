package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/geststore-api/internal/application/auth"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/application/tasks"
	"github.com/jhoicas/geststore-api/internal/application/usecase"
	"github.com/jhoicas/geststore-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/geststore-api/internal/interfaces/http"
	"github.com/jhoicas/geststore-api/migrations"
	"github.com/jhoicas/geststore-api/pkg/config"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
	"github.com/jhoicas/geststore-api/pkg/migrate"
	pkgredis "github.com/jhoicas/geststore-api/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	if err := migrate.AutoRun(ctx, cfg.DB.AutoMigrate, cfg.DB.ConnectionString(), migrations.FS, migrations.Dir, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Idempotencia opcional: sin Redis los POST se atienden sin deduplicar.
	var idempotency pkgredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := pkgredis.New(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		idempotency = redisClient
	} else {
		log.Warn().Msg("Redis no configurado: Idempotency-Key deshabilitado")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	taskProductRepo := postgres.NewTaskProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := inventory.NewLedger(log, rec)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	userUC := usecase.NewUserUseCase(userRepo, log)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, stockRepo, ledger, log)
	stockUC := inventory.NewStockUseCase(txRunner, stockRepo, productRepo, movementRepo, ledger, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(stockRepo)
	taskUC := tasks.NewTaskUseCase(txRunner, taskRepo, taskProductRepo, userRepo, ledger, cfg.Tasks.MaxActivePerWorker, log, rec)
	taskProductUC := tasks.NewTaskProductUseCase(txRunner, taskRepo, productRepo, taskProductRepo, ledger, log, rec)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, rec))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "GestStore API",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		UserUC:          userUC,
		ProductUC:       productUC,
		StockUC:         stockUC,
		ReplenishmentUC: replenishmentUC,
		TaskUC:          taskUC,
		TaskProductUC:   taskProductUC,
		JWTSecret:       cfg.JWT.Secret,
		Idempotency:     idempotency,
		IdempotencyTTL:  cfg.Redis.IdempotencyTTL,
		Ready:           pool.Ping,
		Logger:          log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
