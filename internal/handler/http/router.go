package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries what the router needs besides handlers.
type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	subscriptionMiddleware *middleware.SubscriptionMiddleware,
	authHandler AuthHandler,
	subscriptionHandler SubscriptionHandler,
	shiftHandler ShiftHandler,
	attendanceHandler AttendanceHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(subscriptionMiddleware.EnforceAccess)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})

			// Readable and, for ad consent, writable while expired
			r.Route("/subscription", func(r chi.Router) {
				r.Get("/", subscriptionHandler.GetInfo)
				r.With(middleware.RequireAdmin).Post("/ad-consent", subscriptionHandler.AcceptAdSupported)
			})

			// Super admin only
			r.Route("/admin/organizations/{id}", func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin)
				r.Get("/donations", subscriptionHandler.ListDonations)
				r.Post("/donations", subscriptionHandler.ApproveDonation)
				r.Post("/trial-extensions", subscriptionHandler.ExtendTrial)
				r.Post("/ad-supported", subscriptionHandler.ApproveAdSupported)
				r.Post("/suspend", subscriptionHandler.Suspend)
				r.Put("/status", subscriptionHandler.UpdateStatus)
			})

			// Read-only organizations may only read below
			r.Group(func(r chi.Router) {
				r.Use(subscriptionMiddleware.EnforceWritable)

				r.Route("/shifts", func(r chi.Router) {
					r.Get("/", shiftHandler.List)

					r.Route("/overrides", func(r chi.Router) {
						r.Use(middleware.RequireAdmin)
						r.Get("/", shiftHandler.ListOverrides)
						r.Post("/", shiftHandler.CreateOverride)
						r.Delete("/{id}", shiftHandler.DeleteOverride)
					})

					r.Get("/{id}", shiftHandler.Get)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireAdmin)
						r.Post("/", shiftHandler.Create)
						r.Post("/default", shiftHandler.EnsureDefault)
						r.Put("/{id}", shiftHandler.Update)
						r.Delete("/{id}", shiftHandler.Delete)
						r.Put("/{id}/default", shiftHandler.SetDefault)
					})
				})

				r.Route("/employees/{employeeID}/shift", func(r chi.Router) {
					r.Get("/", shiftHandler.Resolve)
					r.With(middleware.RequireAdmin).Put("/", shiftHandler.Assign)
				})

				r.Route("/attendance", func(r chi.Router) {
					r.Post("/punches", attendanceHandler.Punch)
					r.Get("/daily", attendanceHandler.DailyReport)
					r.Get("/{id}", attendanceHandler.Get)
					r.With(middleware.RequireAdmin).Put("/{id}", attendanceHandler.Correct)
				})
			})
		})
	})

	return r
}
