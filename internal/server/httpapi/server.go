// Package httpapi exposes the developer collection over REST and hosts the
// change notification socket.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/devsync/internal/logging"
	"github.com/dmitrijs2005/devsync/internal/server/models"
	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	maxJSONBody       = 1 << 20
)

type Users interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	UserID(token string) (string, error)
}

type Developers interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page, error)
	Create(ctx context.Context, d *models.Developer) (*models.Developer, error)
	Update(ctx context.Context, d *models.Developer) (*models.Developer, error)
	Delete(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, id int64, filename, contentType string, body io.Reader, size int64) (*models.Developer, error)
	AvatarURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	address       string
	logger        logging.Logger
	users         Users
	developers    Developers
	notifications http.Handler
	maxAvatarSize int64
}

func NewServer(address string, l logging.Logger, us Users, ds Developers, notifications http.Handler, maxAvatarSize int64) *Server {
	return &Server{
		address:       address,
		logger:        l.With("module", "http_server"),
		users:         us,
		developers:    ds,
		notifications: notifications,
		maxAvatarSize: maxAvatarSize,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	devs := api.PathPrefix("/developers").Subrouter()
	devs.Use(s.requireAuth)
	devs.HandleFunc("", s.listDevelopers).Methods(http.MethodGet)
	devs.HandleFunc("", s.createDeveloper).Methods(http.MethodPost)
	devs.HandleFunc("/{id:[0-9]+}", s.updateDeveloper).Methods(http.MethodPut)
	devs.HandleFunc("/{id:[0-9]+}", s.deleteDeveloper).Methods(http.MethodDelete)
	devs.HandleFunc("/{id:[0-9]+}/avatar", s.uploadAvatar).Methods(http.MethodPost)

	r.HandleFunc("/public/{key:.+}", s.publicFile).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/notifications", s.requireAuth(s.notifications)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
