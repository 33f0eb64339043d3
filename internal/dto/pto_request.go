package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/services"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// CreatePTORequest is the body of POST /api/pto-requests
type CreatePTORequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Notes     string `json:"notes"`
}

// DecidePTORequest is the body of POST /api/pto-requests/:id/decision
type DecidePTORequest struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// DraftPTORequest is the body of POST /api/pto-requests/drafts
type DraftPTORequest struct {
	Text string `json:"text" binding:"required"`
}

// PTORequestDTO represents a PTO request in API responses
type PTORequestDTO struct {
	ID          uint64               `json:"id"`
	UserID      uint64               `json:"user_id"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Status      models.RequestStatus `json:"status"`
	Notes       string               `json:"notes"`
	Hours       decimal.Decimal      `json:"hours"`
	DecidedByID *uint64              `json:"decided_by_id"`
	DecidedAt   *time.Time           `json:"decided_at"`
	CreatedAt   time.Time            `json:"created_at"`
	User        *UserSummaryDTO      `json:"user,omitempty"`
	Department  *DepartmentRefDTO    `json:"department,omitempty"`
	DecidedBy   *UserSummaryDTO      `json:"decided_by,omitempty"`
}

// PTORequestListResponse represents a paginated list of requests
type PTORequestListResponse struct {
	Requests   []PTORequestDTO `json:"requests"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int64           `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}

// DraftDTO is an AI-suggested request, not yet submitted
type DraftDTO struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Notes     string          `json:"notes"`
	Hours     decimal.Decimal `json:"hours"`
}

// QuoteDTO prices a prospective request
type QuoteDTO struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	BusinessDays int             `json:"business_days"`
	HoursPerDay  decimal.Decimal `json:"hours_per_day"`
	Hours        decimal.Decimal `json:"hours"`
	Available    decimal.Decimal `json:"available"`
	Sufficient   bool            `json:"sufficient"`
}

// ToQuoteDTO converts a service quote
func ToQuoteDTO(quote services.Quote) QuoteDTO {
	return QuoteDTO{
		StartDate:    utils.FormatDate(quote.StartDate),
		EndDate:      utils.FormatDate(quote.EndDate),
		BusinessDays: quote.BusinessDays,
		HoursPerDay:  quote.HoursPerDay,
		Hours:        quote.Hours,
		Available:    quote.Available,
		Sufficient:   quote.Hours.LessThanOrEqual(quote.Available),
	}
}

// ToPTORequestDTO converts a PTORequest model to PTORequestDTO
func ToPTORequestDTO(request models.PTORequest) PTORequestDTO {
	dto := PTORequestDTO{
		ID:          request.ID,
		UserID:      request.UserID,
		StartDate:   utils.FormatDate(request.StartDate),
		EndDate:     utils.FormatDate(request.EndDate),
		Status:      request.Status,
		Notes:       request.Notes,
		Hours:       request.Hours,
		DecidedByID: request.DecidedByID,
		DecidedAt:   request.DecidedAt,
		CreatedAt:   request.CreatedAt,
	}

	// Include owner if preloaded
	if request.User.ID != 0 {
		user := ToUserSummaryDTO(request.User)
		dto.User = &user
		if request.User.Department != nil {
			dto.Department = &DepartmentRefDTO{ID: request.User.Department.ID, Name: request.User.Department.Name}
		}
	}

	if request.DecidedBy != nil {
		decidedBy := ToUserSummaryDTO(*request.DecidedBy)
		dto.DecidedBy = &decidedBy
	}

	return dto
}

// ToPTORequestListResponse converts a page of requests
func ToPTORequestListResponse(requests []models.PTORequest, page utils.Page, totalCount int64) PTORequestListResponse {
	items := make([]PTORequestDTO, len(requests))
	for i, request := range requests {
		items[i] = ToPTORequestDTO(request)
	}

	return PTORequestListResponse{
		Requests:   items,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalCount: totalCount,
		TotalPages: page.Pages(totalCount),
	}
}

// ToDraftDTOs converts assistant drafts
func ToDraftDTOs(drafts []services.DraftRequest) []DraftDTO {
	items := make([]DraftDTO, len(drafts))
	for i, draft := range drafts {
		items[i] = DraftDTO{
			StartDate: utils.FormatDate(draft.StartDate),
			EndDate:   utils.FormatDate(draft.EndDate),
			Notes:     draft.Notes,
			Hours:     draft.Hours,
		}
	}
	return items
}
