package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/application/orders"
	"github.com/comercia/pedidos-api/internal/domain"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida del pedido (protegido).
type OrderHandler struct {
	uc *orders.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// lifecycleError mapea los errores del ciclo de vida a códigos HTTP.
// Los rechazos de negocio (transición inválida, duplicada, stock, abonos) son
// 409 Conflict: la petición es válida pero el estado del pedido no la permite.
func lifecycleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido, cliente o producto no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrDuplicateTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrMissingInventoryRecord):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MISSING_INVENTORY_RECORD", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderHasPayments):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORDER_HAS_PAYMENTS", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// Create crea un pedido en estado GENERADO.
// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.CreateOrder(c.Context(), companyID, userID, in)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetByID obtiene un pedido con líneas e historial de estados.
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	order, err := h.uc.GetOrder(c.Context(), companyID, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(order)
}

// List lista los pedidos de la empresa.
// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListOrders(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(list)
}

// Advance avanza el pedido a un estado destino (SEPARADO, FACTURADO, ENVIADO, CANCELADO).
// POST /api/orders/:id/advance
func (h *OrderHandler) Advance(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.AdvanceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Advance(c.Context(), companyID, userID, id, in)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(result)
}

// EditLines reemplaza el conjunto completo de líneas del pedido.
// PUT /api/orders/:id/lines
func (h *OrderHandler) EditLines(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.EditOrderLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.EditLines(c.Context(), companyID, userID, id, in)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(order)
}
