package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agropartes/agropartes-api/internal/application/auth"
	"github.com/agropartes/agropartes-api/internal/application/ledger"
	"github.com/agropartes/agropartes-api/internal/application/purchasing"
	"github.com/agropartes/agropartes-api/internal/application/usecase"
	"github.com/agropartes/agropartes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC    *ledger.UseCase
	ComponentUC *usecase.ComponentUseCase
	MachineUC   *usecase.MachineUseCase
	SupplierUC  *usecase.SupplierUseCase
	PurchaseUC  *purchasing.UseCase
	AuthUC      *auth.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Components (protegido)
	components := protected.Group("/components")
	componentHandler := NewComponentHandler(deps.ComponentUC)
	components.Post("/", componentHandler.Create)
	components.Get("/", componentHandler.List)
	components.Get("/:id", componentHandler.GetByID)
	components.Put("/:id", componentHandler.Update)
	components.Delete("/:id", RequireRole(entity.RoleAdmin), componentHandler.Deactivate)

	// Machines (protegido)
	machines := protected.Group("/machines")
	machineHandler := NewMachineHandler(deps.MachineUC)
	machines.Post("/", machineHandler.Create)
	machines.Get("/", machineHandler.List)
	machines.Get("/:id", machineHandler.GetByID)
	machines.Put("/:id", machineHandler.Update)
	machines.Delete("/:id", RequireRole(entity.RoleAdmin), machineHandler.Deactivate)

	// Suppliers (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", RequireRole(entity.RoleAdmin), supplierHandler.Deactivate)

	// Ledger de stock y reportes (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/components/:id/balance", inventoryHandler.GetBalance)
	invGroup.Get("/components/:id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/low-stock", inventoryHandler.GetLowStock)
	invGroup.Get("/valuation", inventoryHandler.GetValuation)

	// Purchases (protegido)
	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/receive", purchaseHandler.Receive)
	purchases.Post("/:id/cancel", RequireRole(entity.RoleAdmin), purchaseHandler.Cancel)
}
