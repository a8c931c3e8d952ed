package main

import (
	"context"
	"crypto/tls"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/backend"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerkv"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/certs"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
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
		Str("ledger", cfg.Ledger.Backend).
		Str("lock", cfg.Lock.Backend).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.OpenLedger(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir ledger")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("cerrar ledger")
		}
	}()

	locker, err := backend.NewLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	runner := ledgerkv.NewRunner(store, log)
	recorder := audit.NewRecorder(runner, log)
	inventoryUC := inventory.NewUseCase(runner, locker, log,
		inventory.WithEvents(hub),
		inventory.WithAuditor(recorder),
		inventory.WithRenderer(infrapdf.NewSnapshotReport(cfg.App.Name)),
		inventory.WithSnapshotConcurrency(cfg.Ledger.SnapshotConcurrency),
	)
	authUC := auth.NewUseCase(runner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, recorder, log)

	if _, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	certRole := ""
	if cfg.TLS.ClientCAPath != "" {
		certRole = cfg.TLS.CertDefaultRole
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:            cfg.App.Name,
		InventoryUC:        inventoryUC,
		AuthUC:             authUC,
		Audit:              recorder,
		Hub:                hub,
		Store:              store,
		JWTSecret:          cfg.JWT.Secret,
		CertRole:           certRole,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Log:                log,
	})

	go func() {
		if err := listen(app, cfg); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// listen sirve HTTP plano o TLS con el .p12 configurado (mTLS opcional con TLS_CLIENT_CA_PATH).
func listen(app *fiber.App, cfg *config.Config) error {
	if !cfg.TLS.Enabled() {
		return app.Listen(cfg.HTTP.Addr())
	}
	tlsCfg, err := certs.ServerConfig(cfg.TLS.P12Path, cfg.TLS.P12Password, cfg.TLS.ClientCAPath)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.HTTP.Addr())
	if err != nil {
		return err
	}
	return app.Listener(tls.NewListener(ln, tlsCfg))
}
