package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketDeletedMessage is returned by DeleteTicketByID on success.
const TicketDeletedMessage = "Ticket deleted successfully"

// TicketService coordinates ticket workflows. It assumes the caller has
// already been authenticated.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	schema     *payloadSchema
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Category    string `json:"category" label:"Category" validate:"required,oneof=asset employee other"`
	Subcategory string `json:"subcategory" label:"Subcategory" validate:"required,oneof=requestAllocation requestDeallocation"`
	Title       string `json:"title" label:"Title" validate:"required"`
	Description string `json:"description" label:"Description" validate:"required"`
	AssignedTo  string `json:"assignedTo" label:"AssignedTo" validate:"required"`
}

// TicketUpdateInput carries the fields to merge; nil means unchanged.
type TicketUpdateInput struct {
	Category    *string `json:"category" label:"Category" validate:"omitnil,oneof=asset employee other"`
	Subcategory *string `json:"subcategory" label:"Subcategory" validate:"omitnil,oneof=requestAllocation requestDeallocation"`
	Title       *string `json:"title" label:"Title" validate:"omitnil,min=1"`
	Description *string `json:"description" label:"Description" validate:"omitnil,min=1"`
	AssignedTo  *string `json:"assignedTo" label:"AssignedTo" validate:"omitnil,min=1"`
	Status      *string `json:"status" label:"Status" validate:"omitnil,oneof=open closed"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		schema:     newPayloadSchema(),
		now:        clock,
	}
}

// CreateTicket validates the payload and stores a new open ticket created by callerID.
func (s *TicketService) CreateTicket(ctx context.Context, callerID string, input TicketCreateInput) (*domain.Ticket, error) {
	// whitespace-only text fails the required checks; stored text is kept as sent
	check := input
	check.Title = strings.TrimSpace(input.Title)
	check.Description = strings.TrimSpace(input.Description)
	check.AssignedTo = strings.TrimSpace(input.AssignedTo)
	if violation := s.schema.Check(check); violation != nil {
		return nil, apperrors.NewValidationError(violation.Field, violation.Message)
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Category:    domain.TicketCategory(input.Category),
		Subcategory: domain.TicketSubcategory(input.Subcategory),
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if callerID != "" {
		ticket.CreatedBy = &callerID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("create ticket", zap.Error(err))
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: callerID},
		Payload: events.TicketCreatedPayload{
			Category:    ticket.Category,
			Subcategory: ticket.Subcategory,
			Title:       ticket.Title,
			AssignedTo:  ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// GetTicketByID fetches a ticket or reports "Invalid Ticket Id".
func (s *TicketService) GetTicketByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewNotFound(apperrors.InvalidTicketID)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapStoreError("get ticket", err)
	}
	return ticket, nil
}

// GetAllTickets returns every ticket in creation order.
func (s *TicketService) GetAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		s.logger.Error("list tickets", zap.Error(err))
		return nil, err
	}
	return tickets, nil
}

// UpdateTicketByID looks the ticket up, then validates and merges the supplied
// fields onto it. Supplying status "closed" stamps ClosedAt; reopening leaves
// an earlier ClosedAt as is.
func (s *TicketService) UpdateTicketByID(ctx context.Context, callerID, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	check := input
	check.Title = trimmed(input.Title)
	check.Description = trimmed(input.Description)
	check.AssignedTo = trimmed(input.AssignedTo)
	if violation := s.schema.Check(check); violation != nil {
		return nil, apperrors.NewValidationError(violation.Field, violation.Message)
	}

	oldStatus := ticket.Status
	now := s.now().UTC()
	changed := applyUpdate(ticket, input)
	if input.Status != nil && ticket.IsClosed() {
		ticket.ClosedAt = &now
	}
	ticket.UpdatedAt = now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapStoreError("update ticket", err)
	}

	actor := events.Actor{UserID: callerID}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketUpdatedPayload{Fields: changed},
	})
	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
				ClosedAt:  ticket.ClosedAt,
			},
		})
	}
	return ticket, nil
}

// DeleteTicketByID removes the ticket and returns a confirmation message.
func (s *TicketService) DeleteTicketByID(ctx context.Context, callerID, ticketID string) (string, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return "", apperrors.NewNotFound(apperrors.InvalidTicketID)
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return "", s.mapStoreError("delete ticket", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: callerID},
	})
	return TicketDeletedMessage, nil
}

// GetAllCategories lists the distinct categories present in the store.
func (s *TicketService) GetAllCategories(ctx context.Context) ([]domain.TicketCategory, error) {
	return s.tickets.ListCategories(ctx)
}

// GetAllSubCategories lists the distinct subcategories used with category.
func (s *TicketService) GetAllSubCategories(ctx context.Context, category string) ([]domain.TicketSubcategory, error) {
	return s.tickets.ListSubcategories(ctx, domain.TicketCategory(category))
}

func applyUpdate(ticket *domain.Ticket, input TicketUpdateInput) []string {
	changed := []string{}
	if input.Category != nil {
		ticket.Category = domain.TicketCategory(*input.Category)
		changed = append(changed, "category")
	}
	if input.Subcategory != nil {
		ticket.Subcategory = domain.TicketSubcategory(*input.Subcategory)
		changed = append(changed, "subcategory")
	}
	if input.Title != nil {
		ticket.Title = *input.Title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		ticket.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = *input.AssignedTo
		changed = append(changed, "assignedTo")
	}
	if input.Status != nil {
		ticket.Status = domain.TicketStatus(*input.Status)
		changed = append(changed, "status")
	}
	return changed
}

func trimmed(val *string) *string {
	if val == nil {
		return nil
	}
	out := strings.TrimSpace(*val)
	return &out
}

func (s *TicketService) mapStoreError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(apperrors.InvalidTicketID)
	}
	s.logger.Error(op, zap.Error(err))
	return err
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}
