package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

const uniqueViolation = "23505"

type AgendaRepo struct {
	db *bun.DB
}

func NewAgendaRepo(db *bun.DB) *AgendaRepo {
	return &AgendaRepo{db: db}
}

type agendaTx struct {
	tx bun.Tx
}

func (r *AgendaRepo) InOwnerTransaction(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx store.AgendaTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockOwnerAgenda(ctx, tx, ownerID); err != nil {
			return err
		}
		return fn(ctx, agendaTx{tx: tx})
	})
}

func lockOwnerAgenda(ctx context.Context, tx bun.Tx, ownerID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("lock agenda of %s: %w", ownerID, err)
	}
	return nil
}

func (r *AgendaRepo) SearchAvailability(ctx context.Context, q store.AvailabilityQuery) (domain.Page[domain.Slot], error) {
	if len(q.InterviewerIDs) == 0 {
		return domain.NewPage[domain.Slot](nil, q.Page, 0), nil
	}

	from, to := q.Window.StartingFrom.UTC(), q.Window.EndingAt.UTC()

	var rows []domain.Slot
	total, err := r.db.NewSelect().
		Model(&rows).
		Join("JOIN agendas AS candidate").
		JoinOn("candidate.start_time = slot.start_time").
		JoinOn("candidate.end_time = slot.end_time").
		Where("candidate.user_id = ?", q.CandidateID).
		Where("slot.user_id IN (?)", bun.In(q.InterviewerIDs)).
		Where("(candidate.start_time BETWEEN ? AND ? OR candidate.end_time BETWEEN ? AND ?)", from, to, from, to).
		Where("(slot.start_time BETWEEN ? AND ? OR slot.end_time BETWEEN ? AND ?)", from, to, from, to).
		OrderExpr("slot.start_time ASC").
		OrderExpr("slot.id ASC").
		Limit(q.Page.Size).
		Offset(q.Page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return domain.Page[domain.Slot]{}, fmt.Errorf("search availability: %w", err)
	}
	return domain.NewPage(rows, q.Page, total), nil
}

func (r agendaTx) Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	return resolveUser(ctx, r.tx, id, expected)
}

func (r agendaTx) Exists(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (bool, error) {
	return r.tx.NewSelect().
		Model((*domain.Slot)(nil)).
		Where("user_id = ?", ownerID).
		Where("start_time = ?", start.UTC()).
		Where("end_time = ?", end.UTC()).
		Exists(ctx)
}

func (r agendaTx) Create(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	m := domain.Slot{
		ID:        slot.ID,
		OwnerID:   slot.OwnerID,
		StartTime: slot.StartTime.UTC(),
		EndTime:   slot.EndTime.UTC(),
		CreatedAt: slot.CreatedAt,
	}

	if _, err := r.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Slot{}, mapWriteError(err)
	}
	return m, nil
}

// mapWriteError translates constraint violations into store sentinels.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}
