package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

type Server struct {
	router *http.ServeMux
	server *http.Server

	trades  domain.TradeRepository
	users   domain.UserRepository
	options domain.OptionRepository

	metrics  *usecase.MetricsEngine
	entries  *usecase.TradeService
	accounts *usecase.UserService
	backup   *usecase.BackupService
	gistSync *usecase.GistSyncService
	coach    *usecase.CoachService

	hub        *Hub
	authSecret []byte
	sessionTTL time.Duration
	logger     *zap.Logger
}

type Deps struct {
	Trades  domain.TradeRepository
	Users   domain.UserRepository
	Options domain.OptionRepository

	Metrics  *usecase.MetricsEngine
	Entries  *usecase.TradeService
	Accounts *usecase.UserService
	Backup   *usecase.BackupService
	GistSync *usecase.GistSyncService
	Coach    *usecase.CoachService

	AuthSecret string
	SessionTTL time.Duration
	Logger     *zap.Logger
}

func NewServer(port int, deps Deps) *Server {
	s := &Server{
		router:     http.NewServeMux(),
		trades:     deps.Trades,
		users:      deps.Users,
		options:    deps.Options,
		metrics:    deps.Metrics,
		entries:    deps.Entries,
		accounts:   deps.Accounts,
		backup:     deps.Backup,
		gistSync:   deps.GistSync,
		coach:      deps.Coach,
		hub:        NewHub(deps.Logger),
		authSecret: []byte(deps.AuthSecret),
		sessionTTL: deps.SessionTTL,
		logger:     deps.Logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Sessions
	s.router.HandleFunc("POST /api/login", s.handleLogin)
	s.router.HandleFunc("POST /api/signup", s.handleSignup)
	s.router.HandleFunc("GET /api/nav", s.withUser(s.handleNav))
	s.router.HandleFunc("POST /api/password", s.withUser(s.handleChangePassword))

	// Trades
	s.router.HandleFunc("GET /api/trades", s.withUser(s.handleListTrades))
	s.router.HandleFunc("POST /api/trades", s.withUser(s.handleSubmitTrade))
	s.router.HandleFunc("PUT /api/trades/{id}", s.withUser(s.handleEditTrade))
	s.router.HandleFunc("DELETE /api/trades/{id}", s.withUser(s.handleDeleteTrade))
	s.router.HandleFunc("POST /api/trades/preview", s.withUser(s.handleRiskPreview))

	// Dashboard metrics
	s.router.HandleFunc("GET /api/stats", s.withUser(s.handleStats))
	s.router.HandleFunc("GET /api/equity", s.withUser(s.handleEquity))
	s.router.HandleFunc("GET /api/hourly", s.withUser(s.handleHourly))
	s.router.HandleFunc("GET /api/emotions", s.withUser(s.handleEmotions))

	// Options
	s.router.HandleFunc("GET /api/options", s.withUser(s.handleListOptions))
	s.router.HandleFunc("PUT /api/options", s.withUser(s.handleReplaceOptions))

	// User management (admin)
	s.router.HandleFunc("GET /api/users", s.adminOnly(s.handleListUsers))
	s.router.HandleFunc("POST /api/users", s.adminOnly(s.handleCreateUser))
	s.router.HandleFunc("PUT /api/users/{id}", s.adminOnly(s.handleUpdateUser))
	s.router.HandleFunc("DELETE /api/users/{id}", s.adminOnly(s.handleDeleteUser))
	s.router.HandleFunc("POST /api/invites", s.adminOnly(s.handleCreateInvite))
	s.router.HandleFunc("DELETE /api/invites/{email}", s.adminOnly(s.handleDeleteInvite))

	// Backup
	s.router.HandleFunc("GET /api/backup/export", s.withUser(s.handleExport))
	s.router.HandleFunc("POST /api/backup/import", s.withUser(s.handleImport))
	s.router.HandleFunc("POST /api/backup/gist/push", s.withUser(s.handleGistPush))
	s.router.HandleFunc("POST /api/backup/gist/pull", s.withUser(s.handleGistPull))

	// AI coach
	s.router.HandleFunc("GET /api/coach/status", s.withUser(s.handleCoachStatus))
	s.router.HandleFunc("POST /api/coach", s.withUser(s.handleCoach))

	// Live refresh
	s.router.HandleFunc("GET /ws", s.withUser(func(w http.ResponseWriter, r *http.Request) {
		s.hub.Serve(w, r)
	}))
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
