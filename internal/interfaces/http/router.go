package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions      *auth.SessionService
	ProductUC     *catalog.ProductUseCase
	CategoryUC    *catalog.CategoryUseCase
	LotUC         *inventory.LotUseCase
	Replenishment *inventory.ReplenishmentUseCase
	CartUC        *sales.CartUseCase
	Orchestrator  *sales.SaleOrchestrator
	ReceiptUC     *sales.ReceiptUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	ReportsUC     *appanalytics.ReportsUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	authHandler := NewAuthHandler(deps.Sessions)

	// Auth (público)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Sessions))
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	protected.Get("/categories", anyRole, categoryHandler.List)
	protected.Post("/categories", adminOnly, categoryHandler.Create)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.LotUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/search", anyRole, productHandler.Search)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)
	products.Get("/:id/lots", anyRole, productHandler.ListLots)

	// Lots
	lots := protected.Group("/lots", adminOnly)
	inventoryHandler := NewInventoryHandler(deps.LotUC)
	lots.Post("/", inventoryHandler.ReceiveLot)
	lots.Get("/:id", inventoryHandler.GetLot)
	lots.Put("/:id", inventoryHandler.UpdateLot)
	lots.Delete("/:id", inventoryHandler.DeactivateLot)
	lots.Post("/:id/write-off", inventoryHandler.WriteOff)

	// Movements (kardex)
	protected.Get("/movements", adminOnly, inventoryHandler.ListMovements)

	// Cart & sales
	saleHandler := NewSaleHandler(deps.CartUC, deps.Orchestrator, deps.ReceiptUC)
	cartGroup := protected.Group("/cart", anyRole)
	cartGroup.Get("/", saleHandler.GetCart)
	cartGroup.Post("/", saleHandler.AddItem)
	cartGroup.Delete("/", saleHandler.ClearCart)
	cartGroup.Put("/items/:productId", saleHandler.SetItem)
	cartGroup.Delete("/items/:productId", saleHandler.RemoveItem)
	cartGroup.Post("/checkout", saleHandler.Checkout)

	salesGroup := protected.Group("/sales", anyRole)
	salesGroup.Post("/", saleHandler.CreateSale)
	salesGroup.Get("/:id", saleHandler.GetSale)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.DownloadReceipt)

	// Dashboard & reports
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/kpis", anyRole, dashboardHandler.GetKPIs)

	reports := protected.Group("/reports", adminOnly)
	reportsHandler := NewReportsHandler(deps.ReportsUC, deps.Replenishment)
	reports.Get("/low-stock", reportsHandler.LowStock)
	reports.Get("/expiring", reportsHandler.Expiring)
	reports.Get("/profit", reportsHandler.Profit)
}
