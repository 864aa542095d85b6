package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amartel/rentaride-backend/api/controllers"
	"github.com/amartel/rentaride-backend/api/middleware"
	authsvc "github.com/amartel/rentaride-backend/internal/auth"
	messagingsvc "github.com/amartel/rentaride-backend/internal/messaging"
	reservationsvc "github.com/amartel/rentaride-backend/internal/reservations"
	subscriptionsvc "github.com/amartel/rentaride-backend/internal/subscriptions"
	vehiclesvc "github.com/amartel/rentaride-backend/internal/vehicles"
	"github.com/amartel/rentaride-backend/pkg/assistant"
	"github.com/amartel/rentaride-backend/pkg/auth/session"
	"github.com/amartel/rentaride-backend/pkg/config"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/metrics"
	"github.com/amartel/rentaride-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Optional integrations
// (assistant) may be nil; their endpoints answer with a dependency error.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	DBPinger        controllers.DependencyPinger
	SessionVerifier session.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics

	AuthService     authsvc.Service
	RegisterService authsvc.RegisterService
	Vehicles        vehiclesvc.Service
	Reservations    reservationsvc.Service
	Subscriptions   subscriptionsvc.Service
	Messaging       messagingsvc.Service
	Assistant       *assistant.Client
}

// NewRouter assembles the chi router with the full middleware chain.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.DependencyPinger{
			"postgres": deps.DBPinger,
			"redis":    deps.Redis,
		}))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Public catalog reads need no session.
	r.Route("/api/v1/vehicles", func(r chi.Router) {
		r.Get("/", controllers.ListCatalog(deps.Vehicles, logg))
		r.Get("/{vehicleId}", controllers.GetVehicle(deps.Vehicles, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionVerifier, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/v1/reservations", func(r chi.Router) {
			r.Use(middleware.RequireRole("client", logg))

			r.Post("/", controllers.CreateReservation(deps.Reservations, logg))
			r.Get("/", controllers.ListMyReservations(deps.Reservations, logg))
			r.Get("/{reservationId}", controllers.GetReservation(deps.Reservations, logg))
			r.Post("/{reservationId}/payment-intent", controllers.IssuePaymentIntent(deps.Reservations, logg))
			r.Post("/{reservationId}/confirm", controllers.ConfirmReservation(deps.Reservations, logg))
			r.Post("/{reservationId}/cancel", controllers.CancelReservation(deps.Reservations, logg))
		})

		r.Route("/v1/messages", func(r chi.Router) {
			r.Post("/", controllers.StartConversation(deps.Messaging, logg))
			r.Get("/", controllers.ListConversations(deps.Messaging, logg))
			r.Get("/{conversationId}", controllers.ListMessages(deps.Messaging, logg))
			r.Post("/{conversationId}", controllers.SendMessage(deps.Messaging, logg))
			r.Post("/{conversationId}/read", controllers.MarkConversationRead(deps.Messaging, logg))
		})

		r.Post("/v1/assistant/chat", controllers.AssistantChat(deps.Assistant, logg))

		r.Route("/v1/agency", func(r chi.Router) {
			r.Use(middleware.RequireAgency(logg))

			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", controllers.AgencyListFleet(deps.Vehicles, logg))
				r.Post("/", controllers.AgencyCreateVehicle(deps.Vehicles, logg))
				r.Patch("/{vehicleId}", controllers.AgencyUpdateVehicle(deps.Vehicles, logg))
				r.Delete("/{vehicleId}", controllers.AgencyDeleteVehicle(deps.Vehicles, logg))
			})

			r.Get("/reservations", controllers.AgencyListReservations(deps.Reservations, logg))

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", controllers.CreateSubscription(deps.Subscriptions, logg))
				r.Get("/", controllers.GetSubscription(deps.Subscriptions, logg))
				r.Post("/confirm", controllers.ConfirmSubscription(deps.Subscriptions, logg))
				r.Post("/cancel", controllers.CancelSubscription(deps.Subscriptions, logg))
			})
		})
	})

	return r
}
