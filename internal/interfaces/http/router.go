package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chabs-app/chabs-api/internal/application/auth"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	CustomerUC   *usecase.CustomerUseCase
	SupplierUC   *usecase.SupplierUseCase
	OrderUC      *usecase.OrderUseCase
	QuotationUC  *usecase.QuotationUseCase
	QuotationPDF *usecase.QuotationPDFUseCase
	UserUC       *usecase.UserUseCase
	AutomationUC *usecase.AutomationUseCase
	SystemUC     *usecase.SystemUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
//
// Permisos por rol:
//   - admin: todo.
//   - warehouse: lectura general + escritura de productos, proveedores y stock.
//   - sales: lectura general + escritura de clientes, órdenes y cotizaciones.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (register y login públicos; el bootstrap del primer admin no
	// requiere token)
	authHandler := NewAuthHandler(deps.AuthUC, deps.JWTSecret)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", AuthMiddleware(deps.JWTSecret), authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	stock := RequireRole(entity.RoleAdmin, entity.RoleWarehouse)
	sales := RequireRole(entity.RoleAdmin, entity.RoleSales)
	admin := RequireRole(entity.RoleAdmin)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", stock, productHandler.Create)
	products.Put("/:id", stock, productHandler.Update)
	products.Post("/:id/stock", stock, productHandler.AdjustStock)
	products.Delete("/:id", stock, productHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", stock, supplierHandler.Create)
	suppliers.Put("/:id", stock, supplierHandler.Update)
	suppliers.Delete("/:id", stock, supplierHandler.Delete)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Post("/", sales, customerHandler.Create)
	customers.Put("/:id", sales, customerHandler.Update)
	customers.Delete("/:id", sales, customerHandler.Delete)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.CustomerUC)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/", sales, orderHandler.Create)
	orders.Put("/:id", sales, orderHandler.Update)
	orders.Patch("/:id/status", sales, orderHandler.ChangeStatus)
	orders.Delete("/:id", sales, orderHandler.Delete)

	// Quotations
	quotations := protected.Group("/quotations")
	quotationHandler := NewQuotationHandler(deps.QuotationUC, deps.CustomerUC, deps.QuotationPDF)
	quotations.Get("/", quotationHandler.List)
	quotations.Get("/:id", quotationHandler.GetByID)
	quotations.Get("/:id/pdf", quotationHandler.DownloadPDF)
	quotations.Post("/", sales, quotationHandler.Create)
	quotations.Put("/:id", sales, quotationHandler.Update)
	quotations.Patch("/:id/status", sales, quotationHandler.ChangeStatus)
	quotations.Delete("/:id", sales, quotationHandler.Delete)

	// Users (solo admin)
	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Put("/:id/password", userHandler.ChangePassword)
	users.Delete("/:id", userHandler.Delete)

	// Automation rules (solo admin)
	automation := protected.Group("/automation/rules", admin)
	automationHandler := NewAutomationHandler(deps.AutomationUC)
	automation.Get("/", automationHandler.List)
	automation.Get("/:id", automationHandler.GetByID)
	automation.Post("/", automationHandler.Create)
	automation.Put("/:id", automationHandler.Update)
	automation.Delete("/:id", automationHandler.Delete)

	// System (solo admin)
	system := protected.Group("/system", admin)
	systemHandler := NewSystemHandler(deps.SystemUC)
	system.Get("/sync/status", systemHandler.SyncStatus)
	system.Post("/sync/connectivity", systemHandler.NotifyConnectivity)
	system.Post("/backups", systemHandler.CreateBackup)
	system.Get("/backups", systemHandler.ListBackups)
	system.Post("/backups/:id/restore", systemHandler.RestoreBackup)
	system.Get("/export", systemHandler.ExportAll)
	system.Post("/import", systemHandler.ImportAll)
	system.Get("/stats", systemHandler.StorageStats)
}
