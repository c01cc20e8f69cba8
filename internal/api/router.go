package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/colmedica/association-api/docs"
	"github.com/colmedica/association-api/internal/api/handler"
	"github.com/colmedica/association-api/internal/api/middleware"
	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
	"github.com/colmedica/association-api/internal/core/service"
	mongodb "github.com/colmedica/association-api/internal/infrastructure/db/mongo"
	redisdb "github.com/colmedica/association-api/internal/infrastructure/db/redis"
	"github.com/colmedica/association-api/internal/pkg/config"
	"github.com/colmedica/association-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongodriver.Database, client *mongodriver.Client, rdb *redis.Client, blobs ports.BlobStore, cfg *config.Config) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("association"))

	// --- Repositories ---
	accountRepo := mongodb.NewAccountRepository(db)
	applicationRepo := mongodb.NewApplicationRepository(db)
	offeringRepo := mongodb.NewOfferingRepository(db)
	enrollmentRepo := mongodb.NewEnrollmentRepository(db)
	newsRepo := mongodb.NewNewsRepository(db)
	sequenceRepo := mongodb.NewSequenceRepository(db)
	tx := mongodb.NewTxRunner(client)
	guard := redisdb.NewReservationGuard(rdb)

	// --- Services ---
	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, cfg.TokenTTL)
	accountService := service.NewAccountService(accountRepo, cfg.OwnerEmail, log)
	applicationService := service.NewApplicationService(applicationRepo, accountRepo, sequenceRepo, tx, log)
	offeringService := service.NewOfferingService(offeringRepo, enrollmentRepo, log)
	enrollmentService := service.NewEnrollmentService(offeringRepo, enrollmentRepo, guard, log)
	newsService := service.NewNewsService(newsRepo, tx, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, accountRepo)
	accountHandler := handler.NewAccountHandler(accountService)
	applicationHandler := handler.NewApplicationHandler(applicationService, blobs)
	offeringHandler := handler.NewOfferingHandler(offeringService, blobs)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	newsHandler := handler.NewNewsHandler(newsService, blobs)
	healthHandler := handler.NewHealthHandler(db, rdb)

	auth := middleware.Auth(cfg.JWTSecret, accountRepo)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret, accountRepo)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Health probes and operational endpoints ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth ---
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/auth/me", authHandler.Me, auth)
	v1.POST("/auth/change-password", authHandler.ChangePassword, auth)

	// --- Membership applications ---
	v1.POST("/applications", applicationHandler.Submit)
	v1.GET("/applications", applicationHandler.List, auth, adminOnly)
	v1.GET("/applications/:id", applicationHandler.Get, auth, adminOnly)
	v1.POST("/applications/:id/approve", applicationHandler.Approve, auth, adminOnly)
	v1.POST("/applications/:id/reject", applicationHandler.Reject, auth, adminOnly)
	v1.POST("/applications/:id/confirm-payment", applicationHandler.ConfirmPayment, auth, adminOnly)

	// --- Offerings and enrollments ---
	v1.GET("/offerings", offeringHandler.List)
	v1.GET("/offerings/:id", offeringHandler.Get, optionalAuth)
	v1.POST("/offerings/:id/enroll", enrollmentHandler.Enroll, optionalAuth)
	v1.POST("/offerings", offeringHandler.Create, auth, adminOnly)
	v1.PUT("/offerings/:id", offeringHandler.Update, auth, adminOnly)
	v1.DELETE("/offerings/:id", offeringHandler.Delete, auth, adminOnly)
	v1.POST("/offerings/:id/image", offeringHandler.UploadImage, auth, adminOnly)
	v1.GET("/offerings/:id/enrollments", enrollmentHandler.Roster, auth, adminOnly)
	v1.POST("/enrollments/:id/confirm-payment", enrollmentHandler.ConfirmPayment, auth, adminOnly)
	v1.GET("/me/enrollments", enrollmentHandler.MyEnrollments, auth)

	// --- News ---
	v1.GET("/news", newsHandler.ListPublished)
	v1.GET("/news/all", newsHandler.ListAll, auth, adminOnly)
	v1.GET("/news/:id", newsHandler.Get, optionalAuth)
	v1.POST("/news", newsHandler.Create, auth)
	v1.PUT("/news/:id", newsHandler.Edit, auth, adminOnly)
	v1.POST("/news/:id/approve", newsHandler.Approve, auth, adminOnly)
	v1.POST("/news/:id/reject", newsHandler.Reject, auth, adminOnly)
	v1.POST("/news/reorder", newsHandler.Reorder, auth, adminOnly)

	// --- Accounts ---
	v1.GET("/accounts", accountHandler.List, auth, adminOnly)
	v1.GET("/accounts/:id", accountHandler.Get, auth, adminOnly)
	v1.PUT("/accounts/:id", accountHandler.Update, auth, adminOnly)
	v1.POST("/accounts/:id/mark-paid", accountHandler.MarkPaid, auth, adminOnly)
	v1.POST("/accounts/members", accountHandler.CreateMember, auth, adminOnly)
	v1.POST("/accounts/admins", accountHandler.CreateAdmin, auth, adminOnly)

	return e
}
