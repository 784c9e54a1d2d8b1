package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
)

// newPostgresRepo connects to POSTGRES_DSN and empties the tickets table.
// Tests using it are skipped when no database is configured.
func newPostgresRepo(t *testing.T) TicketRepository {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{
		DSN:           dsn,
		MaxConns:      4,
		RunMigrations: true,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pg.Close)
	if _, err := pg.PoolHandle().Exec(ctx, `TRUNCATE tickets RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewTicketRepository(pg.PoolHandle())
}

func TestPostgresCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	ticket := newTicket(domain.TicketCategoryAsset, domain.TicketSubcategoryRequestAllocation, "  Laptop  ")
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "  Laptop  " || got.CreatedBy == nil || *got.CreatedBy != "USER-1-ID" || got.ClosedAt != nil {
		t.Fatalf("unexpected ticket %+v", got)
	}
	if _, err := repo.GetByID(ctx, "5b0d7f8e-3c1a-4a53-9a62-0a3c9d1e2f40"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}
}

func TestPostgresUpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	ticket := newTicket(domain.TicketCategoryEmployee, domain.TicketSubcategoryRequestDeallocation, "Offboard")
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	closedAt := time.Now().UTC().Truncate(time.Microsecond)
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &closedAt
	if err := repo.Update(ctx, ticket); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.TicketStatusClosed || got.ClosedAt == nil || !got.ClosedAt.Equal(closedAt) {
		t.Fatalf("update not persisted: %+v", got)
	}

	missing := newTicket(domain.TicketCategoryAsset, domain.TicketSubcategoryRequestAllocation, "ghost")
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: err = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, ticket.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestPostgresListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	// ids are random, so only the seq column can produce this order
	titles := []string{"first", "second", "third", "fourth"}
	for _, title := range titles {
		if err := repo.Create(ctx, newTicket(domain.TicketCategoryAsset, domain.TicketSubcategoryRequestAllocation, title)); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != len(titles) {
		t.Fatalf("len = %d, want %d", len(tickets), len(titles))
	}
	for i, title := range titles {
		if tickets[i].Title != title {
			t.Errorf("tickets[%d] = %q, want %q", i, tickets[i].Title, title)
		}
	}
}

func TestPostgresDistinctCategories(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	for _, s := range []struct {
		category domain.TicketCategory
		sub      domain.TicketSubcategory
	}{
		{domain.TicketCategoryAsset, domain.TicketSubcategoryRequestAllocation},
		{domain.TicketCategoryAsset, domain.TicketSubcategoryRequestDeallocation},
		{domain.TicketCategoryOther, domain.TicketSubcategoryRequestAllocation},
	} {
		if err := repo.Create(ctx, newTicket(s.category, s.sub, "t")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	categories, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %v", categories)
	}
	subs, err := repo.ListSubcategories(ctx, domain.TicketCategoryAsset)
	if err != nil {
		t.Fatalf("subcategories: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("asset subcategories = %v", subs)
	}
	subs, err = repo.ListSubcategories(ctx, domain.TicketCategoryEmployee)
	if err != nil {
		t.Fatalf("subcategories: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("employee subcategories = %v, want none", subs)
	}
}
