package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	InventoryUC *inventory.UseCase
	AuthUC      *auth.UseCase
	Audit       *audit.Recorder
	Hub         *ws.Hub
	Store       Pinger
	JWTSecret   string
	// CertRole rol para clientes autenticados por certificado; vacío desactiva la autenticación por certificado.
	CertRole           string
	RateLimitPerMinute int
	Log                *logger.Logger
}

var (
	readers = []string{entity.RoleViewer, entity.RoleOperator, entity.RoleAdmin}
	writers = []string{entity.RoleOperator, entity.RoleAdmin}
	admins  = []string{entity.RoleAdmin}
)

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(RequestLogger(deps.Log))
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if deps.CertRole != "" {
		app.Use(ClientCertMiddleware(deps.CertRole))
	}

	app.Get("/health", Health(deps.AppName, deps.Store))

	// Feed en vivo
	app.Get("/ws/ledger", WSUpgrade(deps.JWTSecret, readers...), LedgerFeed(deps.Hub))

	api := app.Group("/api", RateLimit(deps.RateLimitPerMinute))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token o certificado de cliente)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Usuarios (admin)
	users := protected.Group("/users", RequireRole(admins...))
	users.Post("/", authHandler.RegisterUser)
	users.Get("/", authHandler.ListUsers)

	// Productos
	productHandler := NewProductHandler(deps.InventoryUC)
	products := protected.Group("/products")
	products.Post("/", RequireRole(writers...), productHandler.Create)
	products.Get("/", RequireRole(readers...), productHandler.List)
	products.Get("/:sku", RequireRole(readers...), productHandler.Get)
	products.Get("/:sku/history", RequireRole(readers...), productHandler.History)
	products.Get("/:sku/time-travel", RequireRole(readers...), productHandler.TimeTravel)

	// Transacciones y snapshot
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv := protected.Group("/inventory")
	inv.Post("/transactions", RequireRole(writers...), inventoryHandler.RecordTransaction)
	inv.Get("/transactions/:id/verify", RequireRole(readers...), inventoryHandler.Verify)
	inv.Get("/snapshot", RequireRole(readers...), inventoryHandler.Snapshot)
	inv.Get("/snapshot/pdf", RequireRole(readers...), inventoryHandler.SnapshotPDF)

	// Auditoría (admin)
	auditHandler := NewAuditHandler(deps.Audit)
	protected.Get("/audit", RequireRole(admins...), auditHandler.List)
}
