package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cashier/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
)

// Server hosts the wallet and back-office HTTP API
type Server struct {
	httpServer *http.Server
}

// NewServer assembles the router and wraps it in an http.Server
func NewServer(addr string, tokens *TokenService, accounts service.AccountService, requests service.RequestService, ledger service.LedgerService, betting service.BettingService, reporting service.ReportingService) *Server {
	wallet := NewWalletHandler(accounts, requests, ledger)
	games := NewGameHandler(betting)
	admin := NewAdminHandler(accounts, requests, ledger, reporting)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover)
	r.Use(Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/wallet", func(r chi.Router) {
			r.Use(Auth(tokens, RoleUser, RoleAdmin))
			r.Post("/register", wallet.Register)
			r.Get("/account", wallet.GetAccount)
			r.Post("/deposits", wallet.CreateDeposit)
			r.Post("/withdrawals", wallet.CreateWithdrawal)
			r.Get("/balance", wallet.GetBalance)
			r.Get("/history", wallet.GetHistory)
			r.Get("/requests", wallet.GetRequests)
		})

		r.Route("/games", func(r chi.Router) {
			r.Use(Auth(tokens, RoleUser, RoleAdmin))
			r.Post("/play", games.PlayRound)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(Auth(tokens, RoleAdmin))
			r.Get("/requests", admin.ListRequests)
			r.Post("/requests/{id}/approve", admin.ApproveRequest)
			r.Post("/requests/{id}/reject", admin.RejectRequest)
			r.Get("/dashboard", admin.Dashboard)
			r.Post("/accounts/{id}/adjust", admin.AdjustAccount)
			r.Get("/accounts/{id}/audit", admin.AuditAccount)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Start begins serving; it blocks until the server stops
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
