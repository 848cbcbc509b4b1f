package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
)

type AvailabilityQuery struct {
	CandidateID    uuid.UUID
	InterviewerIDs []uuid.UUID
	Window         domain.SearchWindow
	Page           domain.PageRequest
}

type AgendaRepository interface {
	// InOwnerTransaction runs fn in a transaction serialized per owner. An error
	// returned by fn rolls back everything written through tx.
	InOwnerTransaction(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx AgendaTx) error) error

	// SearchAvailability returns the interviewer side of every slot pair shared
	// by the candidate and one of the interviewers inside the window, ordered by
	// start time.
	SearchAvailability(ctx context.Context, q AvailabilityQuery) (domain.Page[domain.Slot], error)
}

type AgendaTx interface {
	UserResolver

	Exists(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (bool, error)
	// Create returns ErrAlreadyExists when the (owner, start, end) triple is taken.
	Create(ctx context.Context, slot domain.Slot) (domain.Slot, error)
}
