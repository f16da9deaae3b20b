package routes

import (
	"net/http"

	"github.com/pawws/pawws/internal/app"
	"github.com/pawws/pawws/internal/handler"
	"github.com/pawws/pawws/internal/middleware"
	"github.com/pawws/pawws/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	animal := handler.NewAnimalHandler(app.AnimalService, app.Cfg.AppURL, app.Cfg.MaxUploadSize)
	milestone := handler.NewMilestoneHandler(app.MilestoneService, app.LedgerService)
	donation := handler.NewDonationHandler(
		app.DonationService,
		app.SettingsService,
		app.Cfg.AppURL,
		app.Cfg.MaxUploadSize,
		app.Cfg.AnonymousDonationsEnabled,
	)

	admin := middleware.RequireRole(model.RoleAdmin)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))

	// Catalogue
	mux.HandleFunc("GET /api/animals", animal.List)
	mux.HandleFunc("GET /api/animals/{id}", animal.Get)
	mux.HandleFunc("GET /api/animals/{id}/image", animal.Image)
	mux.HandleFunc("GET /api/milestones/{id}", milestone.Get)
	mux.HandleFunc("GET /api/donations/qr", donation.PaymentQR)

	// Unreviewed crediting, refused unless DIRECT_CONTRIBUTIONS_ENABLED
	mux.HandleFunc("POST /api/animals/{id}/milestones/{milestoneID}/donate", milestone.DirectContribute)

	// Donation submission decides anonymous access itself
	mux.HandleFunc("POST /api/donations", middleware.RateLimitUploads()(donation.Submit))

	// ============================================================================
	// AUTHENTICATED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("GET /api/donations/my", middleware.RequireAuth(donation.Mine))
	mux.HandleFunc("GET /api/donations/{id}/proof", middleware.RequireAuth(donation.Proof))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	// Animals
	mux.HandleFunc("POST /api/animals", admin(animal.Create))
	mux.HandleFunc("DELETE /api/animals/{id}", admin(animal.Delete))
	mux.HandleFunc("PUT /api/animals/{id}/image", admin(animal.SetImage))

	// Milestones
	mux.HandleFunc("POST /api/animals/{id}/milestones", admin(milestone.Create))
	mux.HandleFunc("POST /api/milestones/{id}/credit", admin(milestone.Credit))
	mux.HandleFunc("POST /api/milestones/{id}/complete", admin(milestone.Complete))

	// Donation review
	mux.HandleFunc("GET /api/donations", admin(donation.List))
	mux.HandleFunc("PUT /api/donations/{id}/status", admin(donation.Decide))
	mux.HandleFunc("POST /api/donations/admin/qr", admin(donation.SetPaymentQR))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSOrigins),
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService),
	)
}
