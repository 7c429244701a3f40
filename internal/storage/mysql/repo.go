package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"gezgi_admin/internal/domain"
)

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ domain.AuditLog = (*Repo)(nil)

// Repo is the mutation audit trail.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects to dsn and verifies the connection. Timestamps are always
// parsed, whatever the DSN says.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := connConfig(dsn)
	if err != nil {
		return nil, err
	}
	conn, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// connConfig parses dsn and forces the settings Recent needs to scan
// created_at into a time.Time.
func connConfig(dsn string) (*driver.Config, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

func (r *Repo) Append(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		e.Actor,
		e.Entity,
		valInt64(e.RecordID),
		e.Action,
		e.Status,
		valStr(e.Message),
	)
	return err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, recentAuditSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var rid sql.NullInt64
		var msg sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Entity, &rid, &e.Action, &e.Status, &msg, &e.At); err != nil {
			return nil, err
		}
		if rid.Valid {
			v := rid.Int64
			e.RecordID = &v
		}
		e.Message = msg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Noop is used when no database is configured.
type Noop struct{}

func (Noop) Append(context.Context, domain.AuditEntry) error          { return nil }
func (Noop) Recent(context.Context, int) ([]domain.AuditEntry, error) { return nil, nil }
