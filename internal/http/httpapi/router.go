package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"crowdfund/internal/domain"
	"crowdfund/internal/http/handlers"
	"crowdfund/internal/middleware"
)

// Options carries the middleware settings the router needs.
type Options struct {
	Tokens          middleware.TokenConfig
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	authed := middleware.AuthJWT(opts.Tokens)
	admin := middleware.RequireRole(domain.UserRoleAdmin)
	fundraiser := middleware.RequireRole(domain.UserRoleNGO, domain.UserRoleIndividual)
	limited := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		// Unauthenticated writes get a tighter budget than reads.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin/4, time.Minute))
			r.Post("/auth/login", app.AuthLogin)
			r.Post("/auth/google", app.AuthGoogleVerify)
			r.Post("/onboarding", app.OnboardingStart)
			r.Post("/onboarding/{id}/steps/{step}", app.OnboardingSubmit)
			r.Post("/onboarding/{id}/back", app.OnboardingBack)
			r.Post("/onboarding/{id}/complete", app.OnboardingComplete)
			r.Post("/contact", app.ContactCreate)
		})

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Use(middleware.OptionalAuth(opts.Tokens))
			r.Get("/onboarding/{id}", app.OnboardingGet)
			r.Get("/campaigns", app.CampaignsList)
			r.Get("/campaigns/{id}", app.CampaignsGet)
			r.Get("/campaigns/{id}/live", app.CampaignLive)
			r.Get("/campaigns/{id}/donations", app.DonationsList)
			r.Get("/campaigns/{id}/expenses", app.ExpensesList)
			r.Get("/faq", app.FAQList)
			r.Post("/faq/ask", app.FAQAsk)
			r.Get("/stats", app.StatsSummary)
		})

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Use(authed)
			r.Get("/me", app.Me)
			r.Get("/me/donations", app.MyDonations)
			r.Post("/documents", app.DocumentsUpload)
			r.Get("/documents/{userID}/{docID}", app.DocumentsDownload)

			r.Post("/campaigns/{id}/donations", app.DonationsCreate)
			r.Patch("/campaigns/{id}", app.CampaignsUpdate)
			r.Post("/campaigns/{id}/close", app.CampaignsClose)
			r.Post("/campaigns/{id}/expenses", app.ExpensesCreate)
			r.Get("/campaigns/{id}/receipts.zip", app.CampaignsReceipts)
			r.With(fundraiser).Post("/campaigns", app.CampaignsCreate)

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Get("/verifications", app.AdminVerifications)
				r.Post("/verifications/{userID}", app.AdminReviewUser)
				r.Post("/users/{userID}/role", app.AdminSetRole)
				r.Get("/campaigns", app.AdminCampaigns)
				r.Post("/campaigns/{id}/review", app.AdminReviewCampaign)
				r.Get("/contact", app.AdminContactList)
				r.Post("/contact/{id}/resolve", app.AdminContactResolve)
			})
		})
	})

	return r
}
