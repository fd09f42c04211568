package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/luckydraw/backend/internal/config"
	mW "github.com/luckydraw/backend/internal/middleware"
	"github.com/luckydraw/backend/internal/repository"
	"github.com/luckydraw/backend/internal/services"
)

// Dependencies are the services the router exposes
type Dependencies struct {
	Accounts *services.AccountService
	Tickets  *services.TicketService
	Search   *services.SearchService
	Store    repository.AccountStore
	Cache    services.TicketCache
	Logger   *slog.Logger
}

// NewRouter builds the HTTP handler for the API, Swagger UI and frontend
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	accountHandler := NewAccountHandler(deps.Accounts, deps.Logger)
	ticketHandler := NewTicketHandler(deps.Tickets, deps.Logger)
	qrHandler := NewQRHandler(deps.Tickets, deps.Logger)
	searchHandler := NewSearchHandler(deps.Search, deps.Logger)
	healthHandler := NewHealthHandler(deps.Store, deps.Cache, deps.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         86400,
	}))

	r.Get("/health", healthHandler.Health)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountHandler.ListAccounts)
			r.Post("/", accountHandler.CreateAccount)
			r.Get("/{id}", accountHandler.GetAccount)
			r.Put("/{id}", accountHandler.UpdateAccount)
			r.Delete("/{id}", accountHandler.DeleteAccount)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", ticketHandler.AddTicket)
			r.Get("/check/{ticketNumber}", ticketHandler.CheckTicket)
			r.Get("/{ticketNumber}/qr", qrHandler.TicketQR)
			r.Delete("/{accountId}/{ticketNumber}", ticketHandler.RemoveTicket)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/ticket/{ticketNumber}", searchHandler.SearchByTicket)
			r.Get("/account/{accountNumber}", searchHandler.SearchByAccountNumber)
		})
	})

	if cfg.Frontend.Dir != "" {
		r.Get("/*", mW.StaticFileServer(cfg.Frontend.Dir).ServeHTTP)
	}

	return r
}
