package goal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/goal"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
)

const codeInvalidDueDate = "invalid_due_date"

type Handler struct {
	svc *goal.Service
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type createGoalRequest struct {
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	DueDate       string          `json:"due_date"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
}

type goalResponse struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	TargetAmount  respond.Money `json:"target_amount"`
	CurrentAmount respond.Money `json:"current_amount"`
	DueDate       *string       `json:"due_date"`
	Description   string        `json:"description"`
	Image         string        `json:"image"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toResponse(g *goal.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Title:         g.Title,
		TargetAmount:  respond.Money(g.TargetAmount),
		CurrentAmount: respond.Money(g.CurrentAmount),
		Description:   g.Description,
		Image:         g.Image,
		CreatedAt:     g.CreatedAt,
	}

	if g.DueDate != nil {
		resp.DueDate = new(g.DueDate.Format(time.DateOnly))
	}

	return resp
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	params := goal.CreateParams{
		UserID:        userID,
		Title:         req.Title,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Description:   req.Description,
		Image:         req.Image,
	}

	if s := strings.TrimSpace(req.DueDate); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.ErrorWithDetails(w, r, http.StatusBadRequest, codeInvalidDueDate,
				"due_date must be YYYY-MM-DD", map[string]string{"field": "due_date"})

			return
		}

		params.DueDate = &d
	}

	g, err := h.svc.Create(r.Context(), params)
	if err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]string{"id": g.ID.String()})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	goals, err := h.svc.List(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}

	items := make([]goalResponse, len(goals))
	for i, g := range goals {
		items[i] = toResponse(g)
	}

	respond.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *goal.ValidationError

	switch {
	case errors.As(err, &vErr):
		respond.ErrorWithDetails(w, r, http.StatusBadRequest, vErr.Code, vErr.Error(),
			map[string]string{"field": vErr.Field})
	case goal.Degradable(err):
		respond.Unavailable(w, r, err)
	default:
		respond.Internal(w, r, err)
	}
}
