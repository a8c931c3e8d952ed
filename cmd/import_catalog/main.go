// import_catalog registra en el ledger los productos de un catálogo XML.
//
// Uso: go run ./cmd/import_catalog ruta/catalogo.xml [actor]
// Usa la misma configuración que la API (LEDGER_BACKEND, DB_*, MONGO_*, LOCK_*).
// Cada producto crea su transacción semilla con la cantidad inicial del catálogo.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/backend"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerkv"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const defaultActor = "import:catalogo"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: import_catalog ruta/catalogo.xml [actor]")
		os.Exit(2)
	}
	path := os.Args[1]
	actor := defaultActor
	if len(os.Args) > 2 {
		actor = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("import_catalog")

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir catálogo")
	}
	items, err := catalog.Parse(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("leer catálogo")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.OpenLedger(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir ledger")
	}
	defer store.Close(context.Background())

	locker, err := backend.NewLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}

	runner := ledgerkv.NewRunner(store, log)
	uc := inventory.NewUseCase(runner, locker, log, inventory.WithAuditor(audit.NewRecorder(runner, log)))

	rep, err := catalog.Load(ctx, uc, items, actor, log)
	log.Info().
		Int("read", len(items)).
		Int("created", rep.Created).
		Int("duplicates", rep.Duplicates).
		Int("rejected", len(rep.Failures)).
		Msg("carga de catálogo terminada")
	for _, f := range rep.Failures {
		fmt.Fprintf(os.Stderr, "  producto %d (%s): %v\n", f.Position, f.SKU, f.Err)
	}
	if err != nil {
		log.Error().Err(err).Msg("carga interrumpida")
		stop()
		os.Exit(1)
	}
}
