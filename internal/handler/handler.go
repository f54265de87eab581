// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenloop/dumpster-coordination/internal/model"
	"github.com/greenloop/dumpster-coordination/internal/repository"
	"github.com/greenloop/dumpster-coordination/internal/service"
)

// API holds all HTTP handlers for the coordinator.
type API struct {
	employees *service.EmployeeService
	dumpsters *service.DumpsterService
	plants    *service.PlantService
}

// NewAPI constructs the coordinator's handler set.
func NewAPI(employees *service.EmployeeService, dumpsters *service.DumpsterService, plants *service.PlantService) *API {
	return &API{employees: employees, dumpsters: dumpsters, plants: plants}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseDate parses an optional ISO-8601 date value. Empty input yields a zero
// time, which the services interpret as "today".
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, raw)
}

// ─── Session handlers ─────────────────────────────────────────────────────────

// Login handles POST /login
// Authenticates an employee and opens a session.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, err := a.employees.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// Logout handles POST /logout
// Closes the session named by the Authorization header, if any.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.employees.Logout(r.Header.Get("Authorization"))
	w.WriteHeader(http.StatusOK)
}

// ─── Dumpster handlers ────────────────────────────────────────────────────────

// CreateDumpster handles POST /dumpsters
// Registers a new dumpster at the given location.
func (a *API) CreateDumpster(w http.ResponseWriter, r *http.Request) {
	var req model.NewDumpsterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	dumpster, err := a.dumpsters.Create(r.Context(), req.Location, req.InitialCapacity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, model.DumpsterStatus{
		DumpsterID:       dumpster.DumpsterID,
		Location:         dumpster.Location,
		FillLevel:        dumpster.FillLevel,
		ContainersNumber: dumpster.ContainersNumber,
	})
}

// UpdateDumpster handles PUT /dumpsters/{id}
// Updates a dumpster's fill level and container count, recording usage.
func (a *API) UpdateDumpster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateDumpsterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	dumpster, err := a.dumpsters.UpdateStatus(r.Context(), id, req.FillLevel, req.ContainersNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "dumpster not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.DumpsterStatus{
		DumpsterID:       dumpster.DumpsterID,
		Location:         dumpster.Location,
		FillLevel:        dumpster.FillLevel,
		ContainersNumber: dumpster.ContainersNumber,
	})
}

// DumpsterStatus handles GET /dumpsters/status?postalCode=
// Lists dumpster statuses, optionally filtered by postal code.
func (a *API) DumpsterStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := a.dumpsters.Status(r.Context(), r.URL.Query().Get("postalCode"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get dumpster status")
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

// DumpsterUsage handles GET /dumpsters/usage?startDate=&endDate=
// Lists recorded usage within the inclusive date range.
func (a *API) DumpsterUsage(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("startDate"))
	if err != nil || start.IsZero() {
		writeError(w, http.StatusBadRequest, "startDate is required as YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("endDate"))
	if err != nil || end.IsZero() {
		writeError(w, http.StatusBadRequest, "endDate is required as YYYY-MM-DD")
		return
	}

	usages, err := a.dumpsters.Usage(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, usages)
}

// ─── Plant handlers ───────────────────────────────────────────────────────────

// ListPlants handles GET /plants
// Lists all registered plants with today's capacity.
func (a *API) ListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := a.plants.ListPlants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plants")
		return
	}

	writeJSON(w, http.StatusOK, plants)
}

// PlantCapacity handles GET /plants/capacity?date=&plantId=
// Queries live plant capacity for a date, all plants or a single one.
func (a *API) PlantCapacity(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	capacities, err := a.plants.PlantCapacity(r.Context(), date, r.URL.Query().Get("plantId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get plant capacity")
		return
	}

	writeJSON(w, http.StatusOK, capacities)
}

// AssignDumpsters handles POST /plants/assign
// Assigns a batch of dumpsters to a plant for a pickup date.
func (a *API) AssignDumpsters(w http.ResponseWriter, r *http.Request) {
	employee, ok := EmployeeFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}

	var req model.AssignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	result, err := a.plants.AssignDumpsters(r.Context(), employee.EmployeeID, req.PlantID, req.DumpsterIDs, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "assignment failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
