package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/bodegas-api/internal/application/auth"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/reports"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	infracache "github.com/jhoicas/bodegas-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/bodegas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/bodegas-api/internal/interfaces/http"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
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
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	// Caché de informes (opcional): sin REDIS_ADDR los informes se calculan en cada petición.
	var (
		reportCache reports.Cache
		invalidator inventory.CacheInvalidator
	)
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, informes sin caché")
			_ = client.Close()
		} else {
			defer client.Close()
			rc := infracache.NewReportCache(client, cfg.Redis.TTL)
			reportCache = rc
			invalidator = rc
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	publisherRepo := postgres.NewPublisherRepository(pool)
	authorRepo := postgres.NewAuthorRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	zl := log.Zerolog()
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, zl)
	if err := authUC.EnsureManager(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
		log.Fatal().Err(err).Msg("crear jefe de bodega inicial")
	}

	movementUC := inventory.NewMovementUseCase(txRunner, movementRepo, warehouseRepo, invalidator, zl)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, publisherRepo, authorRepo, warehouseRepo, stockRepo, invalidator, zl)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo, stockRepo, productRepo, invalidator, zl)
	publisherUC := usecase.NewPublisherUseCase(publisherRepo, invalidator, zl)
	authorUC := usecase.NewAuthorUseCase(authorRepo)
	userUC := usecase.NewUserUseCase(userRepo)

	// PDF: informe de movimientos
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	reportUC := reports.NewReportUseCase(reportRepo, reportCache, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodegas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		PublisherUC: publisherUC,
		AuthorUC:    authorUC,
		ProductUC:   productUC,
		WarehouseUC: warehouseUC,
		MovementUC:  movementUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
		LoginLimit:  10,
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
