package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists and queries console audit entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error)
	All(ctx context.Context, filters TimelineFilters) ([]Entry, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO console_audit_log (id, actor, action, entity, entity_id, at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Actor, entry.Action, entry.Entity, entry.EntityID, entry.At)
	return err
}

// Window returns a page of entries, newest first.
func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(
		`SELECT id, actor, action, entity, entity_id, at FROM console_audit_log %s ORDER BY at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)
	return r.scan(ctx, query, args)
}

// All returns every matching entry, newest first.
func (r *PGRepository) All(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(
		`SELECT id, actor, action, entity, entity_id, at FROM console_audit_log %s ORDER BY at DESC`, where)
	return r.scan(ctx, query, args)
}

func (r *PGRepository) scan(ctx context.Context, query string, args []any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Entity, &entry.EntityID, &entry.At); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func buildWhere(filters TimelineFilters) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if !filters.From.IsZero() {
		add("at >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		add("at <= $%d", filters.To)
	}
	if filters.Actor != "" {
		add("actor = $%d", filters.Actor)
	}
	if filters.Entity != "" {
		add("entity = $%d", filters.Entity)
	}
	if filters.Action != "" {
		add("action = $%d", filters.Action)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

var _ Repository = (*PGRepository)(nil)
