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

	"github.com/chabs-app/chabs-api/internal/application/auth"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	infrapdf "github.com/chabs-app/chabs-api/internal/infrastructure/pdf"
	httpRouter "github.com/chabs-app/chabs-api/internal/interfaces/http"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/hybrid"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/internal/storage/remote"
	"github.com/chabs-app/chabs-api/pkg/config"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage_mode", cfg.Storage.Mode).
		Msg("iniciando aplicación")

	// Proveedor de almacenamiento según el modo configurado. En local y hybrid
	// el medio local se valida al arrancar: si no es usable, mejor fallar ya.
	var (
		provider   storage.Provider
		localOps   *local.Provider      // nil en modo cloud
		cloudStats usecase.StatsSource  // solo en modo cloud
		reporter   usecase.SyncReporter // nil en modo local
	)

	switch cfg.Storage.Mode {
	case config.ModeLocal:
		store, err := recordstore.New(cfg.Storage.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("medio local no disponible")
		}
		lp := local.NewProvider(store, log)
		provider, localOps = lp, lp

	case config.ModeCloud:
		pool, err := remote.NewPool(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("configuración de PostgreSQL")
		}
		rp := remote.NewProvider(pool, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if hs := rp.HealthCheck(ctx); !hs.Reachable {
			cancel()
			log.Fatal().Msg("modo cloud: PostgreSQL no alcanzable")
		}
		if err := rp.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("modo cloud: crear esquema")
		}
		cancel()
		provider = rp
		cloudStats = rp
		reporter = &cloudReporter{remote: rp}

	case config.ModeHybrid:
		store, err := recordstore.New(cfg.Storage.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("medio local no disponible")
		}
		lp := local.NewProvider(store, log)
		pool, err := remote.NewPool(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("configuración de PostgreSQL")
		}
		rp := remote.NewProvider(pool, log)
		coord := hybrid.NewCoordinator(lp, rp, store, cfg.Storage.SyncInterval, log)
		provider, localOps, reporter = coord, lp, coord
	}
	defer provider.Close()

	automationUC := usecase.NewAutomationUseCase(provider.AutomationRules(), log)
	productUC := usecase.NewProductUseCase(provider.Products(), automationUC)
	customerUC := usecase.NewCustomerUseCase(provider.Customers())
	supplierUC := usecase.NewSupplierUseCase(provider.Suppliers())
	orderUC := usecase.NewOrderUseCase(provider.Orders(), automationUC)
	quotationUC := usecase.NewQuotationUseCase(provider.Quotations(), automationUC)
	userUC := usecase.NewUserUseCase(provider.Users())
	systemUC := usecase.NewSystemUseCase(localOps, cloudStats, reporter)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	quotationPDFUC := usecase.NewQuotationPDFUseCase(
		provider.Quotations(), provider.Customers(), provider.Products(), pdfGenerator,
	)

	authUC := auth.NewAuthUseCase(provider.Users(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CHABS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage_mode": cfg.Storage.Mode})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		CustomerUC:   customerUC,
		SupplierUC:   supplierUC,
		OrderUC:      orderUC,
		QuotationUC:  quotationUC,
		QuotationPDF: quotationPDFUC,
		UserUC:       userUC,
		AutomationUC: automationUC,
		SystemUC:     systemUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
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

// cloudReporter adapta el proveedor remoto puro al puerto de estado de
// sincronización. En modo cloud no hay cola: o el backend responde o la
// operación falla.
type cloudReporter struct {
	remote *remote.Provider
}

func (r *cloudReporter) Status() storage.SyncStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs := r.remote.HealthCheck(ctx)
	state := storage.StateOnlineSynced
	if !hs.Reachable {
		state = storage.StateOfflineQueued
	}
	return storage.SyncStatus{
		State:         state,
		LastCheck:     time.Now(),
		LastLatencyMs: hs.LatencyMs,
	}
}

func (r *cloudReporter) NotifyConnectivity(bool) {}
