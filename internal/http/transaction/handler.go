package transaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/export"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

// maxUploadSize bounds the multipart form held in memory for an import.
const maxUploadSize = 10 << 20

type Handler struct {
	svc     *transaction.Service
	imports *importer.Service
	exports *export.Service
}

func NewHandler(svc *transaction.Service, imports *importer.Service, exports *export.Service) *Handler {
	return &Handler{
		svc:     svc,
		imports: imports,
		exports: exports,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/summary", h.summary)
	r.Get("/export", h.exportCSV)
	r.Post("/import", h.importCSV)
}

type createTransactionRequest struct {
	Type        transaction.Type `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if req.Amount == nil {
		respond.ErrorWithDetails(w, r, http.StatusBadRequest, transaction.CodeInvalidAmount,
			"amount is required", map[string]string{"field": "amount"})

		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		UserID:      userID,
		Type:        req.Type,
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Query(r.Context(), userID, r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toListResponse(res))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	filter, err := transaction.ParseFilter(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.exports.Export(r.Context(), &buf, userID, filter); err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequestUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.CodeBadRequest, "missing file field")
		return
	}
	defer file.Close()

	report, err := h.imports.Import(r.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrNoProfile):
			respond.Error(w, r, http.StatusBadRequest, codeUnsupportedFormat, err.Error())
		case errors.Is(err, importer.ErrInvalidFile):
			respond.Error(w, r, http.StatusBadRequest, codeInvalidFile, err.Error())
		default:
			fail(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, toImportResponse(report))
}

const (
	codeUnsupportedFormat = "unsupported_format"
	codeInvalidFile       = "invalid_file"
)

// fail maps service errors onto the API error payload.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *transaction.ValidationError

	switch {
	case errors.As(err, &vErr):
		respond.ErrorWithDetails(w, r, http.StatusBadRequest, vErr.Code, vErr.Error(),
			map[string]string{"field": vErr.Field})
	case transaction.Degradable(err):
		respond.Unavailable(w, r, err)
	default:
		respond.Internal(w, r, err)
	}
}
