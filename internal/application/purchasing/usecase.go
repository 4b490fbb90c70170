package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agropartes/agropartes-api/internal/application/dto"
	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
	"github.com/agropartes/agropartes-api/internal/domain/repository"
	"github.com/agropartes/agropartes-api/pkg/logger"
)

// UseCase gestiona órdenes de compra y su recepción. Recibir una compra es el
// hook de integración con el ledger: transición pendiente -> recibida seguida
// del movimiento "compra" (con la orden como referencia).
type UseCase struct {
	purchaseRepo  repository.PurchaseRepository
	supplierRepo  repository.SupplierRepository
	componentRepo repository.ComponentRepository
	ledgerSvc     LedgerService
	log           *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	componentRepo repository.ComponentRepository,
	ledgerSvc LedgerService,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		purchaseRepo:  purchaseRepo,
		supplierRepo:  supplierRepo,
		componentRepo: componentRepo,
		ledgerSvc:     ledgerSvc,
		log:           log,
	}
}

// Create registra una orden de compra en estado pendiente. No toca el stock:
// el movimiento se genera al recibirla.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.SupplierID == "" || in.ComponentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || !supplier.Active {
		return nil, domain.ErrNotFound
	}
	component, err := uc.componentRepo.GetByID(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	if component == nil || !component.Active {
		return nil, domain.ErrNotFound
	}

	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		SupplierID:  in.SupplierID,
		ComponentID: in.ComponentID,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Status:      entity.PurchaseStatusPendiente,
		Invoice:     in.Invoice,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}
	if err := uc.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// GetByID obtiene una compra por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(purchase), nil
}

// List lista compras, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) (*dto.PurchaseListResponse, error) {
	if status != "" && status != entity.PurchaseStatusPendiente &&
		status != entity.PurchaseStatusRecibida && status != entity.PurchaseStatusCancelada {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.purchaseRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Receive marca la compra como recibida y registra el movimiento "compra" en
// el ledger. La transición condicional de estado evita la doble recepción; si
// el movimiento falla la transición se revierte (compensación).
func (uc *UseCase) Receive(ctx context.Context, id, userID string) (*dto.ReceivePurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	if purchase.Status != entity.PurchaseStatusPendiente {
		return nil, domain.ErrConflict
	}

	receivedAt := time.Now()
	updated, err := uc.purchaseRepo.MarkReceived(ctx, id, receivedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Otra petición la recibió primero.
		return nil, domain.ErrConflict
	}

	unitPrice := purchase.UnitPrice
	movement, err := uc.ledgerSvc.Apply(ctx, ledger.ApplyInput{
		ComponentID: purchase.ComponentID,
		Kind:        entity.MovementKindCompra,
		Magnitude:   purchase.Quantity,
		UnitPrice:   &unitPrice,
		Reason:      fmt.Sprintf("compra #%s", purchase.ID),
		Actor:       userID,
		Reference:   purchase.ID,
	})
	if err != nil {
		if _, revertErr := uc.purchaseRepo.Revert(ctx, id); revertErr != nil {
			// La compra quedó recibida sin movimiento: requiere ajuste manual.
			uc.log.Error().Err(revertErr).
				Str("purchase_id", id).
				Msg("no se pudo revertir la recepción tras fallar el movimiento")
		}
		return nil, err
	}

	purchase.Status = entity.PurchaseStatusRecibida
	purchase.ReceivedAt = &receivedAt
	return &dto.ReceivePurchaseResponse{
		Purchase: *toPurchaseResponse(purchase),
		Movement: toMovementResponse(movement),
	}, nil
}

// Cancel cancela una compra pendiente.
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if purchase == nil {
		return domain.ErrNotFound
	}
	updated, err := uc.purchaseRepo.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrConflict
	}
	return nil
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	if p == nil {
		return nil
	}
	return &dto.PurchaseResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		ComponentID: p.ComponentID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		Status:      p.Status,
		Invoice:     p.Invoice,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		ReceivedAt:  p.ReceivedAt,
	}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ComponentID:   m.ComponentID,
		Kind:          m.Kind,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		UnitPrice:     m.UnitPrice,
		Reason:        m.Reason,
		Actor:         m.Actor,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}
