package bank

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
)

type Handler struct {
	connections *bank.ConnectionService
	schedules   *bank.ScheduleManager
}

func NewHandler(connections *bank.ConnectionService, schedules *bank.ScheduleManager) *Handler {
	return &Handler{
		connections: connections,
		schedules:   schedules,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/providers", h.providers)
	r.Get("/connections", h.listConnections)
	r.Post("/connect", h.connect)
	r.Post("/connections/{id}/disconnect", h.disconnect)
	r.Post("/connections/{id}/sync", h.syncNow)
	r.Get("/schedule", h.getSchedule)
	r.Post("/schedule", h.setSchedule)
}

type providerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type connectionResponse struct {
	ID           uuid.UUID   `json:"id"`
	ProviderID   string      `json:"providerId"`
	ProviderName string      `json:"providerName"`
	Status       bank.Status `json:"status"`
	LastSyncedAt *time.Time  `json:"lastSyncedAt"`
}

type scheduleResponse struct {
	Enabled       bool       `json:"enabled"`
	IntervalHours int        `json:"intervalHours"`
	NextRunAt     *time.Time `json:"nextRunAt"`
}

func (h *Handler) providers(w http.ResponseWriter, _ *http.Request) {
	ps := bank.Providers()

	resp := make([]providerResponse, len(ps))
	for i, p := range ps {
		resp[i] = providerResponse{ID: p.ID, Name: p.Name}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"providers": resp})
}

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	conns, err := h.connections.List(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp := make([]connectionResponse, len(conns))
	for i, c := range conns {
		resp[i] = connectionResponse{
			ID:           c.ID,
			ProviderID:   c.ProviderID,
			ProviderName: c.ProviderName,
			Status:       c.Status,
			LastSyncedAt: c.LastSyncedAt,
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"connections": resp})
}

type connectRequest struct {
	ProviderID string `json:"providerId"`
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	id, err := h.connections.Connect(r.Context(), userID, req.ProviderID)
	if err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"connectionId": id.String()})
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := connectionParams(w, r)
	if !ok {
		return
	}

	if err := h.connections.Disconnect(r.Context(), userID, id); err != nil {
		fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := connectionParams(w, r)
	if !ok {
		return
	}

	if err := h.connections.SyncNow(r.Context(), userID, id); err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"started": true})
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	s, err := h.schedules.GetOrCreate(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeSchedule(w, s)
}

// setScheduleRequest keeps raw values: clients send enabled and intervalHours
// as booleans, numbers or strings.
type setScheduleRequest struct {
	Enabled       any `json:"enabled"`
	IntervalHours any `json:"intervalHours"`
}

func (h *Handler) setSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	var req setScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	enabled, err := bank.ParseEnabled(req.Enabled)
	if err != nil {
		fail(w, r, err)
		return
	}

	hours, err := bank.ParseIntervalHours(req.IntervalHours)
	if err != nil {
		fail(w, r, err)
		return
	}

	s, err := h.schedules.SetSchedule(r.Context(), userID, enabled, hours)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeSchedule(w, s)
}

func writeSchedule(w http.ResponseWriter, s *bank.Schedule) {
	respond.JSON(w, http.StatusOK, map[string]scheduleResponse{
		"schedule": {
			Enabled:       s.Enabled,
			IntervalHours: s.IntervalHours,
			NextRunAt:     s.NextRunAt,
		},
	})
}

func connectionParams(w http.ResponseWriter, r *http.Request) (int64, uuid.UUID, bool) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return 0, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, "connection not found")
		return 0, uuid.Nil, false
	}

	return userID, id, true
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *bank.ValidationError

	switch {
	case errors.As(err, &vErr):
		respond.ErrorWithDetails(w, r, http.StatusBadRequest, vErr.Code, vErr.Error(),
			map[string]string{"field": vErr.Field})
	case errors.Is(err, bank.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, "connection not found")
	case bank.Degradable(err):
		respond.Unavailable(w, r, err)
	default:
		respond.Internal(w, r, err)
	}
}
