package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billfoldhq/billfold-backend/api/controllers"
	"github.com/billfoldhq/billfold-backend/api/middleware"
	"github.com/billfoldhq/billfold-backend/internal/apikeys"
	"github.com/billfoldhq/billfold-backend/internal/categories"
	"github.com/billfoldhq/billfold-backend/internal/extraction"
	"github.com/billfoldhq/billfold-backend/internal/feedback"
	"github.com/billfoldhq/billfold-backend/internal/inventory"
	"github.com/billfoldhq/billfold-backend/internal/invoices"
	"github.com/billfoldhq/billfold-backend/internal/organizations"
	"github.com/billfoldhq/billfold-backend/internal/reports"
	"github.com/billfoldhq/billfold-backend/internal/vendors"
	"github.com/billfoldhq/billfold-backend/pkg/auth/session"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
	"github.com/billfoldhq/billfold-backend/pkg/metrics"
	"github.com/billfoldhq/billfold-backend/pkg/redis"
	"github.com/billfoldhq/billfold-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	revocations session.RevocationChecker,
	httpMetrics *metrics.HTTPMetrics,
	orgService organizations.Service,
	invoiceService invoices.Service,
	extractionService extraction.Service,
	categoryService categories.Service,
	vendorService vendors.Service,
	inventoryService inventory.Service,
	feedbackService feedback.Service,
	reportService reports.Service,
	apiKeyService apikeys.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	jwtAuth := middleware.Auth(cfg.JWT, revocations, logg)

	r.Route("/api/v1", func(r chi.Router) {
		// Uploads also accept X-Api-Key for programmatic submission.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyOrAuth(apiKeyService, jwtAuth, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Use(middleware.UploadRateLimit(cfg.UploadRateLimit, redisClient, logg))
			r.Post("/invoices/uploads", controllers.InvoiceUpload(extractionService, cfg.Upload, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth)
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", controllers.InvoiceList(invoiceService, logg))
				r.Post("/", controllers.InvoiceCreate(invoiceService, logg))
				r.Get("/{invoiceId}", controllers.InvoiceDetail(invoiceService, logg))
				r.Patch("/{invoiceId}", controllers.InvoiceUpdate(invoiceService, logg))
				r.Delete("/{invoiceId}", controllers.InvoiceCancel(invoiceService, logg))
				r.Post("/{invoiceId}/status", controllers.InvoiceSetStatus(invoiceService, logg))
				r.Post("/{invoiceId}/categorize", controllers.InvoiceCategorize(invoiceService, logg))
				r.Post("/{invoiceId}/vendor", controllers.InvoiceAssignVendor(invoiceService, logg))
				r.Post("/{invoiceId}/reprocess", controllers.InvoiceReprocess(extractionService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.CategoryList(categoryService, logg))
				r.Post("/", controllers.CategoryCreate(categoryService, logg))
				r.Patch("/{categoryId}", controllers.CategoryRename(categoryService, logg))
				r.Delete("/{categoryId}", controllers.CategoryDelete(categoryService, logg))
			})

			r.Route("/vendors", func(r chi.Router) {
				r.Get("/", controllers.VendorList(vendorService, logg))
				r.Post("/", controllers.VendorCreate(vendorService, logg))
				r.Patch("/{vendorId}", controllers.VendorUpdate(vendorService, logg))
				r.Delete("/{vendorId}", controllers.VendorDelete(vendorService, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/items", controllers.InventoryItemList(inventoryService, logg))
				r.Post("/items", controllers.InventoryItemCreate(inventoryService, logg))
				r.Post("/items/{itemId}/adjust", controllers.InventoryItemAdjust(inventoryService, logg))
				r.Get("/items/{itemId}/history", controllers.InventoryHistoryList(inventoryService, logg))
				r.Post("/apply/{invoiceId}", controllers.InventoryApplyInvoice(inventoryService, logg))
			})

			r.Route("/feedback", func(r chi.Router) {
				r.Post("/", controllers.FeedbackRecord(feedbackService, logg))
				r.Get("/suggestions", controllers.FeedbackSuggestions(feedbackService, logg))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/ledger", controllers.ReportLedger(reportService, logg))
				r.Get("/profit-loss", controllers.ReportProfitLoss(reportService, logg))
				r.Get("/balance-sheet", controllers.ReportBalanceSheet(reportService, logg))
				r.Get("/trial-balance", controllers.ReportTrialBalance(reportService, logg))
				r.Get("/cash-flow", controllers.ReportCashFlow(reportService, logg))
			})

			r.Route("/api-keys", func(r chi.Router) {
				r.Get("/", controllers.APIKeyList(apiKeyService, logg))
				r.Post("/", controllers.APIKeyCreate(apiKeyService, logg))
				r.Delete("/{keyId}", controllers.APIKeyRevoke(apiKeyService, logg))
			})

			r.Route("/organizations", func(r chi.Router) {
				r.Get("/me", controllers.OrganizationDetail(orgService, logg))
				r.Put("/me", controllers.OrganizationSync(orgService, logg))
			})
		})
	})

	return r
}
