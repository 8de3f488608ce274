// Package httpsync is the bulk HTTP transport: GET / returns every entry,
// POST / merges a JSON array of entries. Both require the shared secret in
// the authorization header.
package httpsync

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

const maxPushBytes = 32 << 20

type EntryService interface {
	All(ctx context.Context) ([]models.Entry, error)
	Import(ctx context.Context, e models.Entry) (bool, error)
}

// PushResult is the body of a successful push response.
type PushResult struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Rejected int `json:"rejected"`
}

type Server struct {
	address           string
	secret            string
	svc               EntryService
	logger            logging.Logger
	readHeaderTimeout time.Duration
}

func NewServer(a string, l logging.Logger, svc EntryService, secret string, readHeaderTimeout time.Duration) *Server {
	return &Server{
		address:           a,
		secret:            secret,
		svc:               svc,
		logger:            l.With("module", "http_server"),
		readHeaderTimeout: readHeaderTimeout,
	}
}

// Handler returns the routed endpoint with logging and authorization.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.authorize)

	r.Methods(http.MethodGet).Path("/").HandlerFunc(s.pull)
	r.Methods(http.MethodPost).Path("/").HandlerFunc(s.push)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrBindFailure, s.address, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	stop := context.AfterFunc(ctx, func() {
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info(r.Context(), "handled",
			"method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code, "bytes", m.Written)
	})
}

// authorize rejects requests whose authorization header is not the secret.
// An empty secret rejects everything.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(common.AuthorizationHeaderName)
		if s.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			http.Error(w, common.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) pull(w http.ResponseWriter, r *http.Request) {
	es, err := s.svc.All(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "pull failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(codec.EncodeEntries(es))
}

func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := codec.SplitArray(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := PushResult{Received: len(items)}
	for _, item := range items {
		e, err := codec.DecodePushed(item)
		if err != nil {
			s.logger.Warn(ctx, "rejected entry", "error", err)
			res.Rejected++
			continue
		}

		inserted, err := s.svc.Import(ctx, e)
		if err != nil {
			s.logger.Error(ctx, "push failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if inserted {
			res.Inserted++
		}
	}

	status := http.StatusOK
	if res.Inserted > 0 {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
