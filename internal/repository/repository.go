package repository

import (
	"context"
	"database/sql"
	"time"

	"telemetry_bridge/internal/models"
)

// EventRepo is the append-only bridge journal.
type EventRepo interface {
	Append(ctx context.Context, e models.BridgeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.BridgeEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
