package agendas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

func TestPublish_ExpandsPeriodsInOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)

	mon := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tue := mon.Add(24 * time.Hour)
	slots := f.publish(t, owner,
		domain.AvailabilityPeriod{Start: tue, End: tue.Add(2 * time.Hour)},
		hour(mon),
	)

	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	wantStarts := []time.Time{tue, tue.Add(time.Hour), mon}
	for i, s := range slots {
		if !s.StartTime.Equal(wantStarts[i]) {
			t.Fatalf("slot %d start = %v, want %v", i, s.StartTime, wantStarts[i])
		}
		if s.ID == uuid.Nil {
			t.Fatalf("slot %d has no id", i)
		}
		if s.OwnerID != owner {
			t.Fatalf("slot %d owner = %s, want %s", i, s.OwnerID, owner)
		}
	}
	if f.metrics.published != 3 {
		t.Fatalf("published metric = %d, want 3", f.metrics.published)
	}
}

func TestPublish_InterpretsWallClockAsUTC(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)

	loc := time.FixedZone("UTC-5", -5*60*60)
	slots := f.publish(t, owner, domain.AvailabilityPeriod{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 10, 0, 0, 0, loc),
	})

	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(want) {
		t.Fatalf("start = %v, want %v", slots[0].StartTime, want)
	}
}

func TestPublish_UnknownOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Publish(context.Background(), uuid.New(), []domain.AvailabilityPeriod{
		hour(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
	})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *domain.NotFoundError", err)
	}
	if f.metrics.rejected["publish/not_found"] != 1 {
		t.Fatalf("rejected metrics = %v", f.metrics.rejected)
	}
}

func TestPublish_FailsFastOnInvalidPeriod(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		periods     []domain.AvailabilityPeriod
		wantMessage string
	}{
		{
			name:        "misaligned minute",
			periods:     []domain.AvailabilityPeriod{hour(nine), {Start: nine.Add(15 * time.Minute), End: nine.Add(2 * time.Hour)}},
			wantMessage: "Agenda Availability Start / End minute cannot be different then 00",
		},
		{
			name:        "start after end",
			periods:     []domain.AvailabilityPeriod{{Start: nine.Add(time.Hour), End: nine}},
			wantMessage: "Agenda Availability End cannot be later then Agenda Availability Start",
		},
		{
			name:        "missing end",
			periods:     []domain.AvailabilityPeriod{{Start: nine}},
			wantMessage: "Start / End should not be null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Publish(context.Background(), owner, tt.periods)
			if err == nil {
				t.Fatalf("expected error")
			}
			if err.Error() != tt.wantMessage {
				t.Fatalf("error = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}

	// None of the valid leading periods may have been stored.
	again := f.publish(t, owner, hour(nine))
	if len(again) != 1 {
		t.Fatalf("len(again) = %d, want 1", len(again))
	}
}

func TestPublish_DuplicateFailsWithAlreadyExists(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	f.publish(t, owner, hour(nine))

	_, err := f.svc.Publish(context.Background(), owner, []domain.AvailabilityPeriod{hour(nine)})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("error = %v, want ErrAlreadyExists", err)
	}
	var aErr *domain.AlreadyExistsError
	if !errors.As(err, &aErr) {
		t.Fatalf("error type = %T, want *domain.AlreadyExistsError", err)
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("AlreadyExistsError must also be a ValidationError")
	}
}

func TestPublish_DuplicateInsideBatchPersistsNothing(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Publish(context.Background(), owner, []domain.AvailabilityPeriod{
		{Start: nine, End: nine.Add(3 * time.Hour)},
		hour(nine.Add(2 * time.Hour)),
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("error = %v, want ErrAlreadyExists", err)
	}

	slots := f.publish(t, owner, domain.AvailabilityPeriod{Start: nine, End: nine.Add(3 * time.Hour)})
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3 after rolled back publish", len(slots))
	}
}

func TestPublish_EmptyPeriods(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)

	slots, err := f.svc.Publish(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestPublish_MapsStoreRaceToAlreadyExists(t *testing.T) {
	owner := uuid.New()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	resolver := fakeResolver{
		resolveFn: func(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
			return domain.User{ID: id, Type: domain.UserTypeInterviewer}, nil
		},
	}
	tx := &fakeTx{
		fakeResolver: resolver,
		existsFn: func(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
			return domain.Slot{}, store.ErrAlreadyExists
		},
	}
	repo := &fakeRepo{
		inOwnerTransactionFn: func(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx store.AgendaTx) error) error {
			return fn(ctx, tx)
		},
	}

	p := NewPublisher(&resolver, repo, Options{})
	_, err := p.Publish(context.Background(), owner, []domain.AvailabilityPeriod{hour(nine)})
	var aErr *domain.AlreadyExistsError
	if !errors.As(err, &aErr) {
		t.Fatalf("error = %v, want *domain.AlreadyExistsError", err)
	}
}

func TestPublish_RechecksOwnerInsideTransaction(t *testing.T) {
	owner := uuid.New()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	outside := &fakeResolver{
		resolveFn: func(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
			return domain.User{ID: id}, nil
		},
	}
	tx := &fakeTx{
		fakeResolver: fakeResolver{
			resolveFn: func(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
				return domain.User{}, store.ErrNotFound
			},
		},
	}
	repo := &fakeRepo{
		inOwnerTransactionFn: func(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx store.AgendaTx) error) error {
			return fn(ctx, tx)
		},
	}

	p := NewPublisher(outside, repo, Options{})
	_, err := p.Publish(context.Background(), owner, []domain.AvailabilityPeriod{hour(nine)})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *domain.NotFoundError", err)
	}
}

func TestPublish_PropagatesStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
			return domain.User{ID: id}, nil
		},
	}
	repo := &fakeRepo{
		inOwnerTransactionFn: func(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx store.AgendaTx) error) error {
			return boom
		},
	}

	p := NewPublisher(resolver, repo, Options{})
	_, err := p.Publish(context.Background(), uuid.New(), []domain.AvailabilityPeriod{
		hour(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestCreateOne(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	slot, err := f.svc.CreateOne(ctx, domain.Slot{OwnerID: owner, StartTime: nine, EndTime: nine.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("CreateOne error: %v", err)
	}
	if slot.EndTime.Sub(slot.StartTime) != 2*time.Hour {
		t.Fatalf("duration = %v, want 2h", slot.EndTime.Sub(slot.StartTime))
	}

	_, err = f.svc.CreateOne(ctx, domain.Slot{OwnerID: owner, StartTime: nine, EndTime: nine.Add(2 * time.Hour)})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("error = %v, want ErrAlreadyExists", err)
	}

	_, err = f.svc.CreateOne(ctx, domain.Slot{OwnerID: owner, StartTime: nine.Add(30 * time.Minute), EndTime: nine.Add(2 * time.Hour)})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *domain.ValidationError", err)
	}
}

func TestPublish_RejectsPeriodsBeyondSlotCeiling(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ivan", domain.UserTypeInterviewer)

	_, err := f.svc.Publish(context.Background(), owner, []domain.AvailabilityPeriod{{
		Start: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *domain.ValidationError", err)
	}
	if f.metrics.rejected["publish/validation"] != 1 {
		t.Fatalf("rejected metrics = %v", f.metrics.rejected)
	}
}

func TestPublish_SlotCeilingCountsWholeBatch(t *testing.T) {
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
			return domain.User{ID: id}, nil
		},
	}
	repo := &fakeRepo{}
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	p := NewPublisher(resolver, repo, Options{MaxSlotsPerPublish: 3})
	_, err := p.Publish(context.Background(), uuid.New(), []domain.AvailabilityPeriod{
		{Start: nine, End: nine.Add(2 * time.Hour)},
		{Start: nine.Add(24 * time.Hour), End: nine.Add(26 * time.Hour)},
	})
	if err == nil || err.Error() != "Agenda Availability cannot exceed 3 slots per request" {
		t.Fatalf("error = %v", err)
	}
}
