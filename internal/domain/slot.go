package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Slot is one hour-aligned block of availability owned by a single user.
type Slot struct {
	bun.BaseModel `bun:"table:agendas,alias:slot"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID   uuid.UUID `bun:"user_id,notnull,type:uuid"`
	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (s *Slot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// SameTime reports whether both slots cover exactly the same interval.
func (s Slot) SameTime(other Slot) bool {
	return s.StartTime.Equal(other.StartTime) && s.EndTime.Equal(other.EndTime)
}
