package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agropartes/agropartes-api/internal/application/dto"
	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos de stock y
// reportes de inventario (protegido).
type InventoryHandler struct {
	ledger *ledger.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.UseCase) *InventoryHandler {
	return &InventoryHandler{ledger: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Registra un movimiento inmutable (entrada, salida, compra, consumo,
//
//	devolucion o ajuste). Para ajuste, quantity es el saldo objetivo absoluto.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "component_id, kind, quantity, unit_price, reason, reference"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.Apply(c.Context(), ledger.ApplyInput{
		ComponentID: in.ComponentID,
		Kind:        in.Kind,
		Magnitude:   in.Quantity,
		UnitPrice:   in.UnitPrice,
		Reason:      in.Reason,
		Actor:       GetUserID(c),
		Reference:   in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementDTO(mov))
}

// GetBalance godoc
// @Summary      Saldo actual de un componente
// @Description  Saldo derivado del último movimiento. 0 si no tiene movimientos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del componente"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/components/{id}/balance [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	componentID := c.Params("id")
	balance, err := h.ledger.Balance(c.Context(), componentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalanceResponse{ComponentID: componentID, Balance: balance})
}

// ListMovements godoc
// @Summary      Kardex de un componente
// @Description  Movimientos del componente en orden cronológico, con rango de
//
//	fechas opcional (from/to en RFC 3339).
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del componente"
// @Param        from    query  string  false  "Fecha inicial (RFC 3339)"
// @Param        to      query  string  false  "Fecha final (RFC 3339)"
// @Param        limit   query  int     false  "Máximo de movimientos (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/components/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	componentID := c.Params("id")
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "from: fecha inválida (RFC 3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "to: fecha inválida (RFC 3339)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "paginación inválida"})
	}

	movements, err := h.ledger.History(c.Context(), componentID, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, mov := range movements {
		out = append(out, toMovementDTO(mov))
	}
	return c.JSON(out)
}

// GetLowStock godoc
// @Summary      Componentes con stock bajo
// @Description  Componentes activos en o por debajo de su umbral mínimo,
//
//	ordenados por déficit descendente.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	items, err := h.ledger.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(items),
		"items": items,
	})
}

// GetValuation godoc
// @Summary      Valorización del inventario
// @Description  Saldo × precio unitario por componente activo y total general.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) GetValuation(c *fiber.Ctx) error {
	valuation, err := h.ledger.Valuation(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(valuation)
}

func toMovementDTO(mov *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            mov.ID,
		ComponentID:   mov.ComponentID,
		Kind:          mov.Kind,
		Quantity:      mov.Quantity,
		BalanceBefore: mov.BalanceBefore,
		BalanceAfter:  mov.BalanceAfter,
		UnitPrice:     mov.UnitPrice,
		Reason:        mov.Reason,
		Actor:         mov.Actor,
		Reference:     mov.Reference,
		CreatedAt:     mov.CreatedAt,
	}
}

// parseTimeQuery lee un query param de fecha RFC 3339 opcional.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
