package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"telemetry_bridge/internal/models"

	"github.com/google/uuid"
)

// journalTimeLayout is the TIMESTAMP text form modernc/sqlite round-trips.
// Bounds are bound in the same form so comparisons stay lexical.
const journalTimeLayout = "2006-01-02 15:04:05"

const (
	insertEventSQL  = `INSERT INTO bridge_events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`
	selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM bridge_events`
)

// EventSQLite is the sqlite-backed bridge journal.
type EventSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventSQLite(db *sql.DB) *EventSQLite {
	return &EventSQLite{db: db, now: time.Now}
}

// Append stores one entry, stamping id and time when the caller left them empty.
func (r *EventSQLite) Append(ctx context.Context, e models.BridgeEvent) error {
	e = r.stamp(e)
	if _, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format(journalTimeLayout),
		e.Type,
		e.Description,
		encodeMeta(e.Metadata),
	); err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}
	return nil
}

func (r *EventSQLite) stamp(e models.BridgeEvent) models.BridgeEvent {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now()
	}
	e.OccurredAt = e.OccurredAt.UTC()
	e.Type = journalType(e.Type)
	return e
}

// List returns entries in [from, to] (zero bounds are open) of the given
// type (empty = any), oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.BridgeEvent, error) {
	q, args := listQuery(from, to, typ)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]models.BridgeEvent, 0, 32)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// listQuery builds the filtered select and its bind arguments.
func listQuery(from, to time.Time, typ string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(journalTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(journalTimeLayout))
	}
	if typ = journalType(typ); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q + " ORDER BY occurred_at ASC", args
}

func scanEvent(rows *sql.Rows) (models.BridgeEvent, error) {
	var (
		ev   models.BridgeEvent
		meta sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
		return models.BridgeEvent{}, fmt.Errorf("scan event: %w", err)
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	ev.Metadata = decodeMeta(meta)
	return ev, nil
}

func journalType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// encodeMeta stores metadata as JSON text; unencodable values are dropped.
func encodeMeta(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// decodeMeta reverses encodeMeta; text that is not JSON comes back verbatim.
func decodeMeta(s sql.NullString) any {
	if !s.Valid || s.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return s.String
	}
	return v
}
