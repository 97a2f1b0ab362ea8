package http

import (
	"net/http"

	"github.com/calligro/registration-api/internal/application/otp"
	"github.com/calligro/registration-api/internal/application/registration"
	"github.com/calligro/registration-api/internal/config"
	"github.com/calligro/registration-api/internal/transport/http/handler"
	appmiddleware "github.com/calligro/registration-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the public OTP endpoints.
	otpRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifier := registration.NewNotifier(deps.UserRepo, deps.PushSender)
	regSvc := registration.NewService(deps.UserRepo, notifier)
	otpSvc := otp.NewService(deps.OtpRepo, deps.Mailer)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOtpHandler(otpSvc)
	userH := handler.NewUserHandler(regSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(otpRL.Limit).Post("/otp/send", otpH.Send)
		r.With(otpRL.Limit).Post("/otp/verify", otpH.Verify)

		r.Post("/users", userH.Register)
		r.Get("/users/{id}", userH.Get)
		r.Put("/users/{id}/status", userH.UpdateStatus)
		r.Put("/users/{id}/push-token", userH.RegisterPushToken)
	})

	return r
}
