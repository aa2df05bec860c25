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

	appanalytics "github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/cache"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage agrupa los repositorios del driver elegido.
type storage struct {
	txRunner   inventory.TxRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	lots       repository.LotRepository
	movements  repository.MovementRepository
	close      func()
}

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
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Carritos y revocación de sesiones: Redis si está configurado, memoria si no.
	var (
		carts       repository.CartRepository  = memory.NewCartStore()
		revocations repository.RevocationStore = memory.NewRevocationStore()
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		carts = cache.NewCartStore(redisClient, cfg.Redis.CartTTL)
		revocations = cache.NewRevocationStore(redisClient)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("carritos y sesiones en Redis")
	}

	// Eventos de dominio: RabbitMQ si está configurado, log si no.
	var events ports.EventPublisher = messaging.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled() {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQ, cfg.App.Name, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer publisher.Close()
		events = publisher
	}

	policy := domaininv.ParsePolicy(cfg.Sale.ExpiredLotPolicy)
	allocator := sales.NewAllocator(policy)
	orchestrator := sales.NewSaleOrchestrator(store.txRunner, allocator, events, log, cfg.Sale.MaxAttempts)

	productUC := catalog.NewProductUseCase(store.products, store.categories, store.lots)
	categoryUC := catalog.NewCategoryUseCase(store.categories)
	lotUC := inventory.NewLotUseCase(store.txRunner, store.lots, store.products, store.movements, events, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products, store.lots, store.movements)
	cartUC := sales.NewCartUseCase(carts, store.products, store.lots, allocator, orchestrator)
	receiptUC := sales.NewReceiptUseCase(store.movements, store.lots, store.products, infrapdf.NewReceiptGenerator(cfg.App.Name))
	dashboardUC := appanalytics.NewDashboardUseCase(store.products, store.lots, store.movements)
	reportsUC := appanalytics.NewReportsUseCase(store.products, store.lots, store.movements)

	if cfg.Auth.PasswordHash == "" {
		log.Warn().Msg("AUTH_PASSWORD_HASH vacío: ningún operador podrá iniciar sesión")
	}
	verifier := auth.NewCredentialVerifier(entity.User{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
		Role:         cfg.Auth.Role,
		Active:       cfg.Auth.PasswordHash != "",
	})
	sessions := auth.NewSessionService(verifier, revocations, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Alertas periódicas de stock bajo y vencimientos.
	scanner := appanalytics.NewAlertScanner(replenishmentUC, reportsUC, events, log)
	go scanner.Run(ctx, cfg.Alerts.Interval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Farmacia API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:      sessions,
		ProductUC:     productUC,
		CategoryUC:    categoryUC,
		LotUC:         lotUC,
		Replenishment: replenishmentUC,
		CartUC:        cartUC,
		Orchestrator:  orchestrator,
		ReceiptUC:     receiptUC,
		DashboardUC:   dashboardUC,
		ReportsUC:     reportsUC,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (aplicando migraciones si corresponde) o el store en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.StorageMemory {
		s := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:   memory.NewTxRunner(s),
			products:   memory.NewProductRepository(s),
			categories: memory.NewCategoryRepository(s),
			lots:       memory.NewLotRepository(s),
			movements:  memory.NewMovementRepository(s),
			close:      func() {},
		}, nil
	}

	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		lots:       postgres.NewLotRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		close:      pool.Close,
	}, nil
}
