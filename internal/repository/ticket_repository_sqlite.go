package repository

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// ConnPool hands out SQLite connections. persistence.SQLite satisfies it.
type ConnPool interface {
	Take(ctx context.Context) (*sqlite.Conn, error)
	Put(conn *sqlite.Conn)
}

type sqliteTicketRepository struct {
	pool ConnPool
}

// NewSQLiteTicketRepository instantiates the file-backed repository.
func NewSQLiteTicketRepository(pool ConnPool) TicketRepository {
	return &sqliteTicketRepository{pool: pool}
}

const sqliteTimeLayout = time.RFC3339Nano

func (r *sqliteTicketRepository) withConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)
	return fn(conn)
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, category, subcategory, title, description, created_by, assigned_to,
                             status, closed_at, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	return r.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				ticket.ID,
				string(ticket.Category),
				string(ticket.Subcategory),
				ticket.Title,
				ticket.Description,
				nullableText(ticket.CreatedBy),
				ticket.AssignedTo,
				string(ticket.Status),
				nullableTime(ticket.ClosedAt),
				ticket.CreatedAt.UTC().Format(sqliteTimeLayout),
				ticket.UpdatedAt.UTC().Format(sqliteTimeLayout),
			},
		})
	})
}

func (r *sqliteTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET category=?, subcategory=?, title=?, description=?, assigned_to=?,
            status=?, closed_at=?, updated_at=?
        WHERE id=?`
	return r.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				string(ticket.Category),
				string(ticket.Subcategory),
				ticket.Title,
				ticket.Description,
				ticket.AssignedTo,
				string(ticket.Status),
				nullableTime(ticket.ClosedAt),
				ticket.UpdatedAt.UTC().Format(sqliteTimeLayout),
				ticket.ID,
			},
		})
		if err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var found *domain.Ticket
	err := r.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+ticketColumns+` FROM tickets WHERE id=?`, &sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ticket, err := scanSQLiteTicket(stmt)
				if err != nil {
					return err
				}
				found = ticket
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *sqliteTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	err := r.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+ticketColumns+` FROM tickets ORDER BY rowid ASC`, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ticket, err := scanSQLiteTicket(stmt)
				if err != nil {
					return err
				}
				result = append(result, *ticket)
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *sqliteTicketRepository) Delete(ctx context.Context, id string) error {
	return r.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, `DELETE FROM tickets WHERE id=?`, &sqlitex.ExecOptions{Args: []any{id}}); err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *sqliteTicketRepository) ListCategories(ctx context.Context) ([]domain.TicketCategory, error) {
	result := []domain.TicketCategory{}
	err := r.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT DISTINCT category FROM tickets ORDER BY category`, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, domain.TicketCategory(stmt.ColumnText(0)))
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *sqliteTicketRepository) ListSubcategories(ctx context.Context, category domain.TicketCategory) ([]domain.TicketSubcategory, error) {
	result := []domain.TicketSubcategory{}
	err := r.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT DISTINCT subcategory FROM tickets WHERE category=? ORDER BY subcategory`,
			&sqlitex.ExecOptions{
				Args: []any{string(category)},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					result = append(result, domain.TicketSubcategory(stmt.ColumnText(0)))
					return nil
				},
			})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanSQLiteTicket reads a row selected with ticketColumns.
func scanSQLiteTicket(stmt *sqlite.Stmt) (*domain.Ticket, error) {
	ticket := domain.Ticket{
		ID:          stmt.ColumnText(0),
		Category:    domain.TicketCategory(stmt.ColumnText(1)),
		Subcategory: domain.TicketSubcategory(stmt.ColumnText(2)),
		Title:       stmt.ColumnText(3),
		Description: stmt.ColumnText(4),
		AssignedTo:  stmt.ColumnText(6),
		Status:      domain.TicketStatus(stmt.ColumnText(7)),
	}
	if !stmt.ColumnIsNull(5) {
		createdBy := stmt.ColumnText(5)
		ticket.CreatedBy = &createdBy
	}
	if !stmt.ColumnIsNull(8) {
		closedAt, err := time.Parse(sqliteTimeLayout, stmt.ColumnText(8))
		if err != nil {
			return nil, fmt.Errorf("parse closed_at: %w", err)
		}
		ticket.ClosedAt = &closedAt
	}
	var err error
	if ticket.CreatedAt, err = time.Parse(sqliteTimeLayout, stmt.ColumnText(9)); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if ticket.UpdatedAt, err = time.Parse(sqliteTimeLayout, stmt.ColumnText(10)); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &ticket, nil
}

func nullableText(val *string) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullableTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return val.UTC().Format(sqliteTimeLayout)
}
