// Package httpserver exposes passkeeper over a JSON HTTP API.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// UserService is the account and session logic the handlers need.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.Session, error)
	VerifySession(ctx context.Context, token string) (models.Identity, error)
	InvalidateSession(ctx context.Context, id models.Identity) error
}

// CredentialService is the owner-scoped credential logic.
type CredentialService interface {
	List(ctx context.Context, id models.Identity) ([]*models.Credential, error)
	Create(ctx context.Context, id models.Identity, in models.CredentialInput) (*models.Credential, error)
	Update(ctx context.Context, id models.Identity, recordID string, p models.CredentialPatch) (*models.Credential, error)
	Delete(ctx context.Context, id models.Identity, recordID string) error
	Summary(ctx context.Context, id models.Identity) (*models.Summary, error)
}

// ExportService produces encrypted vault exports.
type ExportService interface {
	Export(ctx context.Context, id models.Identity, passphrase string) (*models.Export, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	users           UserService
	credentials     CredentialService
	exports         ExportService
	sessionValidity time.Duration
	secureCookies   bool
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, cs CredentialService, es ExportService) *Server {
	return &Server{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "http_server"),
		users:           us,
		credentials:     cs,
		exports:         es,
		sessionValidity: cfg.SessionValidityDuration,
		secureCookies:   !cfg.DevMode,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/ping", s.ping)

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/register", s.register)
		r.Post("/session/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/session", s.session)
			r.Post("/session/logout", s.logout)

			r.Get("/dashboard", s.dashboard)

			r.Route("/credentials", func(r chi.Router) {
				r.Get("/", s.listCredentials)
				r.Post("/", s.createCredential)
				r.Put("/", s.updateCredential)
				r.Delete("/", s.deleteCredential)
				r.Post("/export", s.exportCredentials)
				r.Put("/{id}", s.updateCredential)
				r.Delete("/{id}", s.deleteCredential)
			})
		})
	})

	return r
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
