package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(deps Deps) http.Handler {
	h := NewHandler(deps)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/sessions", h.CreateSessionHandler)

	r.Route("/sessions/{sessionId}", func(r chi.Router) {
		r.Delete("/", h.DestroySessionHandler)

		r.Post("/login", h.LoginHandler)
		r.Post("/guest-login", h.GuestLoginHandler)
		r.Put("/registered", h.SetRegisteredHandler)
		r.Get("/account", h.GetAccountHandler)

		r.Get("/cash", h.GetCashHandler)
		r.Put("/cash", h.SetCashHandler)
		r.Post("/cash/grants/drain", h.DrainGrantsHandler)

		r.Get("/bank", h.GetBankBalanceHandler)
		r.Post("/bank/deposit", h.DepositHandler)
		r.Post("/bank/withdraw", h.WithdrawHandler)
	})

	return r
}
