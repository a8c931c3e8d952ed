package inventory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/id"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/jhoicas/inventario-ledger/pkg/validator"
)

// ErrNoRenderer el caso de uso se construyó sin generador de PDF.
var ErrNoRenderer = errors.New("inventory: generador de PDF no configurado")

// UseCase servicio de inventario: escrituras con verificación de stock y lecturas por proyección.
type UseCase struct {
	runner   repository.Runner
	locker   SKULocker
	engine   *ProjectionEngine
	events   EventPublisher
	auditor  Auditor
	renderer SnapshotRenderer
	log      *logger.Logger
	clock    func() time.Time
	limit    int
}

// Option ajusta dependencias opcionales del caso de uso.
type Option func(*UseCase)

// WithClock reemplaza time.Now (tests).
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) { uc.clock = clock }
}

// WithEvents conecta el feed de eventos.
func WithEvents(p EventPublisher) Option {
	return func(uc *UseCase) { uc.events = p }
}

// WithAuditor conecta la bitácora.
func WithAuditor(a Auditor) Option {
	return func(uc *UseCase) { uc.auditor = a }
}

// WithRenderer conecta el generador del reporte PDF.
func WithRenderer(r SnapshotRenderer) Option {
	return func(uc *UseCase) { uc.renderer = r }
}

// WithSnapshotConcurrency limita las proyecciones simultáneas de GetSnapshot.
func WithSnapshotConcurrency(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.limit = n
		}
	}
}

// NewUseCase construye el servicio de inventario.
func NewUseCase(runner repository.Runner, locker SKULocker, log *logger.Logger, opts ...Option) *UseCase {
	uc := &UseCase{
		runner:  runner,
		locker:  locker,
		engine:  NewProjectionEngine(),
		events:  nopPublisher{},
		auditor: nopAuditor{},
		log:     log.Named("inventory"),
		clock:   time.Now,
		limit:   8,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) now() time.Time { return entity.TruncateTimestamp(uc.clock()) }

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras
// ──────────────────────────────────────────────────────────────────────────────

// AddProduct registra el producto y su transacción semilla IN "Initial Stock" con timestamp = created_at.
func (uc *UseCase) AddProduct(ctx context.Context, in dto.CreateProductRequest, actor string) (*dto.ProductCreatedResponse, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	sku := inventory.NormalizeSKU(in.SKU)
	if sku == "" {
		return nil, domain.NewValidationError("sku", "es obligatorio")
	}

	var out *dto.ProductCreatedResponse
	err := uc.withSKU(ctx, sku, func() error {
		return uc.runner.Run(ctx, func(r repository.Repositories) error {
			product := &entity.Product{
				SKU:             sku,
				Name:            strings.TrimSpace(in.Name),
				Description:     in.Description,
				Price:           *in.Price,
				Category:        in.Category,
				Supplier:        in.Supplier,
				InitialQuantity: in.Quantity,
				CreatedAt:       uc.now(),
			}
			if err := r.Products.Create(ctx, product); err != nil {
				return err
			}
			seed := &entity.Transaction{
				ID:             id.NewTransactionID(),
				SKU:            sku,
				Type:           entity.TransactionIN,
				QuantityChange: in.Quantity,
				Reason:         entity.InitialStockReason,
				PerformedBy:    actor,
				Timestamp:      product.CreatedAt,
			}
			if err := r.Transactions.Append(ctx, seed); err != nil {
				// el producto quedó registrado sin semilla
				uc.log.Error().Err(err).Str("sku", sku).Msg("no se pudo registrar la transacción semilla")
				return err
			}
			out = &dto.ProductCreatedResponse{
				Product:           dto.ToProductResponse(product),
				Proof:             dto.ToProofResponse(product.Proof),
				SeedTransactionID: seed.ID,
			}
			uc.events.Publish(dto.LedgerEvent{
				Event:          dto.EventProductCreated,
				TransactionID:  seed.ID,
				SKU:            sku,
				Type:           string(seed.Type),
				QuantityChange: seed.QuantityChange,
				ResultingStock: seed.QuantityChange,
				PerformedBy:    actor,
				Timestamp:      entity.FormatTimestamp(seed.Timestamp),
			})
			return nil
		})
	})
	uc.record(ctx, entity.ActionProductCreate, "product", sku, actor, err, map[string]string{
		"quantity": strconv.FormatInt(in.Quantity, 10),
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", sku).Int64("quantity", in.Quantity).Str("actor", actor).Msg("producto registrado")
	return out, nil
}

// RecordTransaction valida, proyecta el stock actual y agrega la transacción.
// Un OUT que dejaría el stock negativo falla con InsufficientStockError y no escribe nada.
func (uc *UseCase) RecordTransaction(ctx context.Context, in dto.RecordTransactionRequest, actor string) (*dto.TransactionRecordedResponse, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	txType, ok := entity.ParseTransactionType(in.Type)
	if !ok {
		return nil, domain.NewValidationError("type", "debe ser IN, OUT o ADJUSTMENT")
	}
	sku := inventory.NormalizeSKU(in.SKU)

	var out *dto.TransactionRecordedResponse
	err := uc.withSKU(ctx, sku, func() error {
		return uc.runner.Run(ctx, func(r repository.Repositories) error {
			_, current, err := uc.engine.ProjectSKU(ctx, r, sku, time.Time{})
			if err != nil {
				return err
			}
			change := txType.SignedChange(in.Quantity)
			resulting, ok := inventory.Apply(current.Balance, change)
			if !ok {
				return domain.NewValidationError("quantity", "el stock resultante excede el máximo representable")
			}
			if txType == entity.TransactionOUT && resulting < 0 {
				return &domain.InsufficientStockError{SKU: sku, Available: current.Balance, Requested: in.Quantity}
			}

			// estrictamente creciente por SKU
			ts := uc.now()
			if !ts.After(current.LastTransactionAt) {
				ts = current.LastTransactionAt.Add(time.Millisecond)
			}
			tx := &entity.Transaction{
				ID:             id.NewTransactionID(),
				SKU:            sku,
				Type:           txType,
				QuantityChange: change,
				Reason:         strings.TrimSpace(in.Reason),
				PerformedBy:    actor,
				Timestamp:      ts,
			}
			if err := r.Transactions.Append(ctx, tx); err != nil {
				return err
			}
			out = &dto.TransactionRecordedResponse{
				Transaction:    dto.ToTransactionResponse(tx),
				Proof:          dto.ToProofResponse(tx.Proof),
				ResultingStock: resulting,
			}
			uc.events.Publish(dto.LedgerEvent{
				Event:          dto.EventTransactionRecorded,
				TransactionID:  tx.ID,
				SKU:            sku,
				Type:           string(tx.Type),
				QuantityChange: change,
				ResultingStock: resulting,
				PerformedBy:    actor,
				Timestamp:      entity.FormatTimestamp(ts),
			})
			return nil
		})
	})
	uc.record(ctx, entity.ActionTransactionRecord, "transaction", sku, actor, err, map[string]string{
		"type":     string(txType),
		"quantity": strconv.FormatInt(in.Quantity, 10),
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			uc.log.Warn().Str("sku", sku).Int64("available", insufficient.Available).
				Int64("requested", insufficient.Requested).Msg("salida rechazada por stock insuficiente")
		}
		return nil, err
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

// GetProductDetails ficha del producto más stock actual, última transacción y conteo.
func (uc *UseCase) GetProductDetails(ctx context.Context, sku string) (*dto.ProductDetailsResponse, error) {
	sku, err := requireSKU(sku)
	if err != nil {
		return nil, err
	}
	var out *dto.ProductDetailsResponse
	err = uc.runner.Run(ctx, func(r repository.Repositories) error {
		product, p, err := uc.engine.ProjectSKU(ctx, r, sku, time.Time{})
		if err != nil {
			return err
		}
		out = &dto.ProductDetailsResponse{
			Product:                  dto.ToProductResponse(product),
			CurrentStock:             p.Balance,
			LastTransactionTimestamp: entity.FormatTimestamp(p.LastTransactionAt),
			TransactionCount:         p.Count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts catálogo completo ordenado por SKU.
func (uc *UseCase) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	var products []*entity.Product
	err := uc.runner.Run(ctx, func(r repository.Repositories) error {
		var err error
		products, err = r.Products.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortProducts(products)
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ToProductResponse(p))
	}
	return out, nil
}

// GetHistory transacciones en orden cronológico con saldo acumulado y prueba de integridad.
func (uc *UseCase) GetHistory(ctx context.Context, sku string) (*dto.HistoryResponse, error) {
	sku, err := requireSKU(sku)
	if err != nil {
		return nil, err
	}
	var out *dto.HistoryResponse
	err = uc.runner.Run(ctx, func(r repository.Repositories) error {
		_, p, err := uc.engine.ProjectSKU(ctx, r, sku, time.Time{})
		if err != nil {
			return err
		}
		entries := make([]dto.HistoryEntry, 0, len(p.Entries))
		for _, e := range p.Entries {
			tx := e.Transaction
			entries = append(entries, dto.HistoryEntry{
				TransactionID:  tx.ID,
				Type:           string(tx.Type),
				QuantityChange: tx.QuantityChange,
				Reason:         tx.Reason,
				PerformedBy:    tx.PerformedBy,
				Timestamp:      entity.FormatTimestamp(tx.Timestamp),
				RunningBalance: e.RunningBalance,
				Integrity:      dto.ToProofResponse(tx.Proof),
			})
		}
		out = &dto.HistoryResponse{SKU: sku, CurrentStock: p.Balance, Transactions: entries}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot stock actual de todos los productos, ordenado por SKU.
// Cada proyección abre su propia sesión; como mucho uc.limit en paralelo.
func (uc *UseCase) GetSnapshot(ctx context.Context) (*dto.SnapshotResponse, error) {
	generatedAt := uc.now()
	var products []*entity.Product
	err := uc.runner.Run(ctx, func(r repository.Repositories) error {
		var err error
		products, err = r.Products.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortProducts(products)

	items := make([]dto.SnapshotItem, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.limit)
	for i, product := range products {
		g.Go(func() error {
			return uc.runner.Run(gctx, func(r repository.Repositories) error {
				p, err := uc.engine.ProjectProduct(gctx, r, product, time.Time{})
				if err != nil {
					return err
				}
				items[i] = dto.SnapshotItem{
					SKU:                      product.SKU,
					Name:                     product.Name,
					CurrentStock:             p.Balance,
					LastTransactionTimestamp: entity.FormatTimestamp(p.LastTransactionAt),
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.SnapshotResponse{
		GeneratedAt: entity.FormatTimestamp(generatedAt),
		Total:       len(items),
		Items:       items,
	}, nil
}

// TimeTravel stock histórico de sku en el instante at (ISO-8601). Incluye transacciones con timestamp <= at.
func (uc *UseCase) TimeTravel(ctx context.Context, sku, at string) (*dto.TimeTravelResponse, error) {
	sku, err := requireSKU(sku)
	if err != nil {
		return nil, err
	}
	asOf, err := entity.ParseTimestamp(strings.TrimSpace(at))
	if err != nil {
		return nil, domain.NewValidationError("timestamp", "debe ser un instante ISO-8601, p. ej. 2024-01-10T08:00:00.000Z")
	}
	if asOf.IsZero() {
		// el instante cero significa "sin corte" para la proyección
		asOf = asOf.Add(time.Nanosecond)
	}

	var out *dto.TimeTravelResponse
	err = uc.runner.Run(ctx, func(r repository.Repositories) error {
		product, p, err := uc.engine.ProjectSKU(ctx, r, sku, asOf)
		if err != nil {
			return err
		}
		out = &dto.TimeTravelResponse{
			Product:                    dto.ToProductResponse(product),
			AsOf:                       entity.FormatTimestamp(asOf),
			HistoricalStockAtTimestamp: p.Balance,
			LastTransactionTimestamp:   entity.FormatTimestamp(p.LastTransactionAt),
			TransactionsIncluded:       p.Count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyTransaction devuelve la transacción con su prueba y si el hash recalculado coincide.
func (uc *UseCase) VerifyTransaction(ctx context.Context, transactionID string) (*dto.VerifyTransactionResponse, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domain.NewValidationError("transaction_id", "es obligatorio")
	}
	var out *dto.VerifyTransactionResponse
	err := uc.runner.Run(ctx, func(r repository.Repositories) error {
		tx, err := r.Transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		out = &dto.VerifyTransactionResponse{
			Transaction: dto.ToTransactionResponse(tx),
			Proof:       dto.ToProofResponse(tx.Proof),
			Verified:    tx.Proof != nil && tx.Proof.Verified,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Verified {
		uc.log.Warn().Str("transaction_id", transactionID).Msg("transacción con hash que no coincide")
	}
	return out, nil
}

// SnapshotReportPDF renderiza GetSnapshot como PDF.
func (uc *UseCase) SnapshotReportPDF(ctx context.Context) ([]byte, error) {
	if uc.renderer == nil {
		return nil, ErrNoRenderer
	}
	snap, err := uc.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderSnapshot(ctx, snap)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (uc *UseCase) withSKU(ctx context.Context, sku string, fn func() error) error {
	unlock, err := uc.locker.Lock(ctx, "sku:"+sku)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (uc *UseCase) record(ctx context.Context, action, resource, resourceID, actor string, err error, meta map[string]string) {
	entry := entity.AuditEntry{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Actor:      actor,
		Outcome:    entity.AuditSuccess,
		Metadata:   meta,
	}
	if err != nil {
		entry.Outcome = entity.AuditFailure
		entry.Metadata["error"] = err.Error()
	}
	uc.auditor.Record(ctx, entry)
}

// validate convierte el primer fallo del validador en ValidationError.
func validate(in any) error {
	if e := validator.FirstError(in); e != nil {
		return domain.NewValidationError(e.FailedField, e.Message())
	}
	return nil
}

func requireSKU(sku string) (string, error) {
	sku = inventory.NormalizeSKU(sku)
	if sku == "" {
		return "", domain.NewValidationError("sku", "es obligatorio")
	}
	return sku, nil
}

func sortProducts(products []*entity.Product) {
	slices.SortFunc(products, func(a, b *entity.Product) int { return cmp.Compare(a.SKU, b.SKU) })
}
