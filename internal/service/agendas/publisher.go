package agendas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/metrics"
	"interviewcal/internal/store"
)

type Publisher struct {
	users    store.UserResolver
	repo     store.AgendaRepository
	maxSlots int
	metrics  metrics.Recorder
	log      *slog.Logger
}

func NewPublisher(users store.UserResolver, repo store.AgendaRepository, opts Options) *Publisher {
	opts = opts.withDefaults()
	return &Publisher{
		users:    users,
		repo:     repo,
		maxSlots: opts.MaxSlotsPerPublish,
		metrics:  opts.Metrics,
		log:      opts.Log.With(slog.String("component", "agendas.publisher")),
	}
}

// Publish expands the periods into hour slots and stores all of them for the
// owner, or none if any step fails. Created slots come back in generation order.
func (p *Publisher) Publish(ctx context.Context, ownerID uuid.UUID, periods []domain.AvailabilityPeriod) ([]domain.Slot, error) {
	created, err := p.publish(ctx, ownerID, periods)
	if err != nil {
		p.metrics.RecordRejected("publish", rejectReason(err))
		return nil, err
	}

	p.metrics.RecordPublished(len(created))
	p.log.Info(
		"availability published",
		slog.String("user_id", ownerID.String()),
		slog.Int("periods", len(periods)),
		slog.Int("slots", len(created)),
	)
	return created, nil
}

func (p *Publisher) publish(ctx context.Context, ownerID uuid.UUID, periods []domain.AvailabilityPeriod) ([]domain.Slot, error) {
	if _, err := resolveUser(ctx, p.users, ownerID, domain.UserTypeAny); err != nil {
		return nil, err
	}

	normalized := make([]domain.AvailabilityPeriod, 0, len(periods))
	for _, period := range periods {
		period = period.InUTC()
		if err := domain.ValidateSlot(period.Start, period.End); err != nil {
			return nil, err
		}
		normalized = append(normalized, period)
	}
	if err := domain.ValidateSlotCount(normalized, p.maxSlots); err != nil {
		return nil, err
	}

	generated := domain.ExpandPeriods(ownerID, normalized)
	if len(generated) == 0 {
		return []domain.Slot{}, nil
	}

	var created []domain.Slot
	err := p.repo.InOwnerTransaction(ctx, ownerID, func(ctx context.Context, tx store.AgendaTx) error {
		created = make([]domain.Slot, 0, len(generated))
		for _, slot := range generated {
			s, err := createOne(ctx, tx, slot)
			if err != nil {
				return err
			}
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateOne stores a single slot after checking its bounds and owner.
func (p *Publisher) CreateOne(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	slot.StartTime = slot.StartTime.UTC()
	slot.EndTime = slot.EndTime.UTC()
	if err := domain.ValidateSlot(slot.StartTime, slot.EndTime); err != nil {
		p.metrics.RecordRejected("create", rejectReason(err))
		return domain.Slot{}, err
	}

	var created domain.Slot
	err := p.repo.InOwnerTransaction(ctx, slot.OwnerID, func(ctx context.Context, tx store.AgendaTx) error {
		s, err := createOne(ctx, tx, slot)
		if err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		p.metrics.RecordRejected("create", rejectReason(err))
		return domain.Slot{}, err
	}
	p.metrics.RecordPublished(1)
	return created, nil
}

func createOne(ctx context.Context, tx store.AgendaTx, slot domain.Slot) (domain.Slot, error) {
	if _, err := resolveUser(ctx, tx, slot.OwnerID, domain.UserTypeAny); err != nil {
		return domain.Slot{}, err
	}

	exists, err := tx.Exists(ctx, slot.OwnerID, slot.StartTime, slot.EndTime)
	if err != nil {
		return domain.Slot{}, fmt.Errorf("check slot: %w", err)
	}
	if exists {
		return domain.Slot{}, domain.SlotAlreadyExists(slot.OwnerID, slot.StartTime, slot.EndTime)
	}

	created, err := tx.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Slot{}, domain.SlotAlreadyExists(slot.OwnerID, slot.StartTime, slot.EndTime)
		}
		return domain.Slot{}, fmt.Errorf("create slot: %w", err)
	}
	return created, nil
}
