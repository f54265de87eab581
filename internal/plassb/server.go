// Package plassb implements the remote plant process that speaks HTTP/JSON.
// It serves the same two logical operations as the socket protocol — capacity
// query and incoming-dumpster notification — over a chi router.
package plassb

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/greenloop/dumpster-coordination/internal/ledger"
	"github.com/greenloop/dumpster-coordination/internal/model"
)

// Server owns one plant's capacity ledger and serves the HTTP protocol.
type Server struct {
	plantID string
	ledger  *ledger.Ledger
	log     *slog.Logger
}

// NewServer constructs a Server for a single plant.
func NewServer(plantID string, led *ledger.Ledger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{plantID: plantID, ledger: led, log: log}
}

// Ledger exposes the server's capacity ledger, for maintenance loops.
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// Routes builds the plant's HTTP surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/plants", func(r chi.Router) {
		r.Get("/capacity", s.handleCapacity)
		r.Post("/notify", s.handleNotify)
	})

	return r
}

// handleCapacity serves GET /api/plants/capacity?date=YYYY-MM-DD.
// An absent date means today; a malformed one is a client error. The
// lenient-date fallback is a socket-protocol legacy and is not mirrored here.
func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw))
			return
		}
		date = parsed
	}

	writeJSON(w, http.StatusOK, model.RemotePlantCapacity{
		ID:       s.plantID,
		Capacity: s.ledger.Available(date),
	})
}

// handleNotify serves POST /api/plants/notify. A null arrivalDate commits the
// containers against the server's current date.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var notification model.PlantNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	date := time.Now()
	if notification.ArrivalDate != nil && *notification.ArrivalDate != "" {
		parsed, err := time.Parse(model.DateLayout, *notification.ArrivalDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid arrivalDate %q, want YYYY-MM-DD", *notification.ArrivalDate))
			return
		}
		date = parsed
	}

	s.ledger.Reserve(date, notification.TotalContainers)
	s.log.Info("notification received",
		"plant", s.plantID,
		"dumpsters", len(notification.DumpsterIDs),
		"containers", notification.TotalContainers,
		"date", date.Format(model.DateLayout),
		"available_tons", s.ledger.Available(date),
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("notification received for %d dumpsters", len(notification.DumpsterIDs)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
