package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/comercia/pedidos-api/internal/application/auth"
	"github.com/comercia/pedidos-api/internal/application/inventory"
	"github.com/comercia/pedidos-api/internal/application/orders"
	"github.com/comercia/pedidos-api/internal/application/payments"
	"github.com/comercia/pedidos-api/internal/application/usecase"
	"github.com/comercia/pedidos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC    *usecase.CompanyUseCase
	ClientUC     *usecase.ClientUseCase
	ProductUC    *usecase.ProductUseCase
	LifecycleUC  *orders.LifecycleUseCase
	AllocationUC *payments.AllocationUseCase
	MovementUC   *inventory.MovementUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	paymentHandler := NewPaymentHandler(deps.AllocationUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Get("/:id/cartera", paymentHandler.ListClientCartera)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Inventory (protegido; compras y ajustes solo admin o bodeguero)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.MovementUC)
	invGroup.Post("/purchases", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.RegisterPurchase)
	invGroup.Post("/adjustments", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.RegisterAdjustment)
	invGroup.Get("/stock/:productId", inventoryHandler.GetStock)
	invGroup.Get("/movements/:productId", inventoryHandler.ListMovements)

	// Orders (protegido)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.LifecycleUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/advance", orderHandler.Advance)
	ordersGroup.Put("/:id/lines", orderHandler.EditLines)
	ordersGroup.Get("/:id/movements", inventoryHandler.ListOrderMovements)

	// Receipts (protegido)
	receipts := protected.Group("/receipts")
	receipts.Post("/", paymentHandler.Allocate)
	receipts.Get("/:id", paymentHandler.GetReceipt)
}
