package router

import (
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/config"
	"github.com/TheYates/bernat-medical-sub000/internal/handler"
	"github.com/TheYates/bernat-medical-sub000/internal/infra"
	"github.com/TheYates/bernat-medical-sub000/internal/middleware"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"
	"github.com/TheYates/bernat-medical-sub000/internal/service"
	"github.com/TheYates/bernat-medical-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	admin      = model.RoleAdmin
	pharmacist = model.RolePharmacist
	cashier    = model.RoleCashier
	doctor     = model.RoleDoctor
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	drugRepo := repository.NewDrugRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	txRepo := repository.NewStockTransactionRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	restockQuery, err := repository.NewRestockQuery(db)
	if err != nil {
		return nil, err
	}

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(drugRepo, movementRepo, auditSvc)
	notifSvc := service.NewNotificationService(notifRepo)
	restockSvc := service.NewRestockService(drugRepo, vendorRepo, txRepo, restockQuery,
		ledgerSvc, notifSvc, auditSvc, service.DecideInitialStatus, dispatcher, cfg)
	drugSvc := service.NewDrugService(db, drugRepo, catalogRepo, auditSvc)
	catalogSvc := service.NewCatalogService(catalogRepo)
	vendorSvc := service.NewVendorService(vendorRepo, auditSvc)

	idem := infra.NewIdempotencyStore(rdb, time.Duration(cfg.IdempotencyTTLHours)*time.Hour)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	drugsH := handler.NewDrugsHandler(drugSvc)
	restockH := handler.NewRestockHandler(restockSvc, idem, cfg.PDFStoragePath)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	vendorsH := handler.NewVendorsHandler(vendorSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	notifH := handler.NewNotificationsHandler(notifSvc)
	auditH := handler.NewAuditHandler(auditSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, mailCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	everyone := middleware.RequireRole(admin, pharmacist, cashier, doctor)
	adminOnly := middleware.RequireRole(admin)
	stockStaff := middleware.RequireRole(admin, pharmacist)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}

		v1.GET("/drugs", everyone, drugsH.List)
		v1.GET("/drugs/:id", everyone, drugsH.GetByID)
		drugs := v1.Group("/drugs", adminOnly)
		{
			drugs.POST("", drugsH.Create)
			drugs.PUT("/:id", drugsH.Update)
			drugs.DELETE("/:id", drugsH.Deactivate)
			drugs.PATCH("/:id/reactivate", drugsH.Reactivate)
		}

		inv := v1.Group("/inventory")
		{
			inv.POST("/restock", stockStaff, restockH.CreateBatch)
			inv.GET("/restock/pending", stockStaff, restockH.ListPending)
			inv.GET("/restock/pending/count", stockStaff, restockH.PendingCount)
			inv.GET("/restock/history", stockStaff, restockH.ListHistory)
			inv.GET("/restock/history/export", stockStaff, restockH.ExportHistory)
			inv.GET("/restock/:id/pdf", stockStaff, restockH.Voucher)
			inv.POST("/restock/:id/approve", adminOnly, restockH.Resolve)

			inv.POST("/drugs/:id/restock", stockStaff, restockH.CreateSingle)
			inv.POST("/drugs/:id/dispense", middleware.RequireRole(admin, pharmacist, cashier), ledgerH.Dispense)
			inv.POST("/drugs/:id/adjust", adminOnly, ledgerH.Adjust)
			inv.GET("/movements", stockStaff, ledgerH.ListMovements)
		}

		v1.GET("/vendors", stockStaff, vendorsH.List)
		v1.GET("/vendors/:id", stockStaff, vendorsH.GetByID)
		vendors := v1.Group("/vendors", adminOnly)
		{
			vendors.POST("", vendorsH.Create)
			vendors.PUT("/:id", vendorsH.Update)
			vendors.DELETE("/:id", vendorsH.Deactivate)
		}

		v1.GET("/categories", everyone, catalogH.ListCategories)
		v1.GET("/forms", everyone, catalogH.ListForms)
		catalog := v1.Group("", adminOnly)
		{
			catalog.POST("/categories", catalogH.CreateCategory)
			catalog.PUT("/categories/:id", catalogH.UpdateCategory)
			catalog.DELETE("/categories/:id", catalogH.DeactivateCategory)
			catalog.POST("/forms", catalogH.CreateForm)
		}

		notif := v1.Group("/notifications", everyone)
		{
			notif.GET("", notifH.List)
			notif.GET("/unread-count", notifH.UnreadCount)
			notif.PATCH("/read-all", notifH.MarkAllRead)
			notif.PATCH("/:id/read", notifH.MarkRead)
		}

		v1.GET("/audit", adminOnly, auditH.List)
	}

	// Swagger UI only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
