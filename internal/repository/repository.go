package repository

import (
	"context"
	"database/sql"
	"time"

	"pumpsim"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*pumpsim.User, error)
}

// StateRepo stores the published pump snapshot (single row). It is a
// publish target for observers, not a restore source: the machine starts
// fresh on boot.
type StateRepo interface {
	Save(ctx context.Context, s pumpsim.PumpState) error
	Load(ctx context.Context) (pumpsim.PumpState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e pumpsim.PumpEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]pumpsim.PumpEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
