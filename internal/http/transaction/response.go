package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Type        transaction.Type `json:"type"`
	Amount      respond.Money    `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
}

type paginationResponse struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

type listResponse struct {
	Items      []transactionResponse `json:"items"`
	Pagination *paginationResponse   `json:"pagination,omitempty"`
}

type summaryResponse struct {
	TotalIncome  respond.Money `json:"totalIncome"`
	TotalExpense respond.Money `json:"totalExpense"`
	Net          respond.Money `json:"net"`
}

type rowErrorResponse struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type importResponse struct {
	Imported     int                   `json:"imported"`
	Profile      string                `json:"profile"`
	Transactions []transactionResponse `json:"transactions"`
	Errors       []rowErrorResponse    `json:"errors"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      respond.Money(tx.Amount),
		Category:    tx.Category,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toListResponse(res transaction.PageResult) listResponse {
	resp := listResponse{Items: toResponseList(res.Items)}

	if p := res.Pagination; p != nil {
		resp.Pagination = &paginationResponse{
			Page:     p.Page,
			PageSize: p.PageSize,
			Total:    p.Total,
			Pages:    p.Pages,
		}
	}

	return resp
}

func toSummaryResponse(s transaction.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:  respond.Money(s.TotalIncome),
		TotalExpense: respond.Money(s.TotalExpense),
		Net:          respond.Money(s.Net),
	}
}

func toImportResponse(report *importer.Report) importResponse {
	errs := make([]rowErrorResponse, len(report.Errors))
	for i, e := range report.Errors {
		errs[i] = rowErrorResponse{Line: e.Line, Message: e.Message}
	}

	return importResponse{
		Imported:     report.Imported,
		Profile:      report.Profile,
		Transactions: toResponseList(report.Transactions),
		Errors:       errs,
	}
}
