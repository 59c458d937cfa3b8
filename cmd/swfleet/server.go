package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/SobhanAbedi/swfleet/pkg/ids"
	"github.com/SobhanAbedi/swfleet/pkg/logging"
	"github.com/SobhanAbedi/swfleet/pkg/metrics"
	"github.com/SobhanAbedi/swfleet/pkg/models"
	"github.com/SobhanAbedi/swfleet/pkg/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the film and starship browser as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Listen
			}

			s, err := a.newSession()
			if err != nil {
				return err
			}

			logger := logging.WithSession(logging.NewLogger("server"), s.ID())

			// A failed initial load is not fatal: POST /load retries it.
			if err := s.Load(cmd.Context()); err != nil {
				logger.Error().Err(err).Msg("Initial load failed")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              listen,
				Handler:           newServer(s, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", listen).Str("base_url", a.cfg.BaseURL).Msg("Starting server")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			logger.Info().Msg("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config, :8080)")
	return cmd
}

// server exposes a session's read interface over HTTP.
type server struct {
	session *session.Session
	logger  zerolog.Logger
}

func newServer(s *session.Session, logger zerolog.Logger) http.Handler {
	srv := &server{session: s, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /load", srv.handleLoad)
	mux.HandleFunc("GET /films", srv.handleFilms)
	mux.HandleFunc("PUT /selection/{episode}", srv.handleSelect)
	mux.HandleFunc("GET /page", srv.handlePage)
	mux.HandleFunc("POST /page/next", srv.handleNext)
	mux.HandleFunc("POST /page/previous", srv.handlePrevious)
	mux.HandleFunc("GET /starships/{id}", srv.handleStarship)
	mux.HandleFunc("GET /starships/{id}/films", srv.handleStarshipFilms)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Session-ID", s.ID())
		mux.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Load(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.GetFilms())
}

func (s *server) handleFilms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.GetFilms())
}

func (s *server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SelectFilm(r.PathValue("episode")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.GetPage())
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.GetPage())
}

func (s *server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Next())
}

func (s *server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Previous())
}

func (s *server) handleStarship(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ValidateStarshipID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ship, ok := s.session.GetStarship(id)
	if !ok {
		s.writeError(w, fmt.Errorf("starship %d: %w", id, models.ErrNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, ship)
}

func (s *server) handleStarshipFilms(w http.ResponseWriter, r *http.Request) {
	id, err := ids.ValidateStarshipID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	films, err := s.session.StarshipFilms(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, films)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidIDType), errors.Is(err, models.ErrInvalidIDRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNetwork), errors.Is(err, models.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeJSON(w, status, map[string]string{
		"error":  err.Error(),
		"status": strconv.Itoa(status),
	})
}
