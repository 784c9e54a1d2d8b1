package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo"`
	Status      *string `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID          string                   `json:"id"`
	Category    domain.TicketCategory    `json:"category"`
	Subcategory domain.TicketSubcategory `json:"subcategory"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	CreatedBy   *string                  `json:"createdBy"`
	AssignedTo  string                   `json:"assignedTo"`
	Status      domain.TicketStatus      `json:"status"`
	ClosedAt    *time.Time               `json:"closedAt,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// MessageResponse carries error text and other one-line replies.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewTicketResponse maps a domain ticket to its wire form.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Title:       t.Title,
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
