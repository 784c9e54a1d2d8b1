package domain

import "time"

// TicketCategory classifies what a ticket is about.
type TicketCategory string

const (
	TicketCategoryAsset    TicketCategory = "asset"
	TicketCategoryEmployee TicketCategory = "employee"
	TicketCategoryOther    TicketCategory = "other"
)

// TicketSubcategory narrows a category to the requested action.
type TicketSubcategory string

const (
	TicketSubcategoryRequestAllocation   TicketSubcategory = "requestAllocation"
	TicketSubcategoryRequestDeallocation TicketSubcategory = "requestDeallocation"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is an asset or employee request record.
type Ticket struct {
	ID          string
	Category    TicketCategory
	Subcategory TicketSubcategory
	Title       string
	Description string
	CreatedBy   *string
	AssignedTo  string
	Status      TicketStatus
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsClosed reports whether the ticket is in the closed state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}
