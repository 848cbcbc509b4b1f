// Package memory keeps users and slots in process memory. It backs local runs
// with storage.driver=memory and the service tests.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

type slotKey struct {
	owner      uuid.UUID
	start, end int64
}

func keyOf(s domain.Slot) slotKey {
	return slotKey{owner: s.OwnerID, start: s.StartTime.UnixNano(), end: s.EndTime.UnixNano()}
}

type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	slots []domain.Slot
	keys  map[slotKey]struct{}
	now   func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]domain.User),
		keys:  make(map[slotKey]struct{}),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.User{}, err
		}
		user.ID = id
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return domain.User{}, store.ErrAlreadyExists
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(id, expected)
}

func (s *Store) resolveLocked(id uuid.UUID, expected domain.UserType) (domain.User, error) {
	u, ok := s.users[id]
	if !ok || !u.Type.Matches(expected) {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, userType domain.UserType, page domain.PageRequest) (domain.Page[domain.User], error) {
	s.mu.RLock()
	matched := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.Type.Matches(userType) {
			matched = append(matched, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})
	return domain.NewPage(paginate(matched, page), page, len(matched)), nil
}

func (s *Store) InOwnerTransaction(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context, tx store.AgendaTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, pending: make(map[slotKey]struct{})}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, slot := range tx.created {
		s.slots = append(s.slots, slot)
		s.keys[keyOf(slot)] = struct{}{}
	}
	return nil
}

func (s *Store) SearchAvailability(ctx context.Context, q store.AvailabilityQuery) (domain.Page[domain.Slot], error) {
	if err := ctx.Err(); err != nil {
		return domain.Page[domain.Slot]{}, err
	}

	interviewers := make(map[uuid.UUID]struct{}, len(q.InterviewerIDs))
	for _, id := range q.InterviewerIDs {
		interviewers[id] = struct{}{}
	}

	s.mu.RLock()
	candidate := make(map[[2]int64]struct{})
	for _, slot := range s.slots {
		if slot.OwnerID == q.CandidateID && touchesWindow(slot, q.Window) {
			candidate[[2]int64{slot.StartTime.UnixNano(), slot.EndTime.UnixNano()}] = struct{}{}
		}
	}
	var matched []domain.Slot
	for _, slot := range s.slots {
		if _, ok := interviewers[slot.OwnerID]; !ok || !touchesWindow(slot, q.Window) {
			continue
		}
		if _, ok := candidate[[2]int64{slot.StartTime.UnixNano(), slot.EndTime.UnixNano()}]; ok {
			matched = append(matched, slot)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.Before(matched[j].StartTime)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})
	return domain.NewPage(paginate(matched, q.Page), q.Page, len(matched)), nil
}

// touchesWindow mirrors the SQL predicate: start or end within the closed window.
func touchesWindow(slot domain.Slot, w domain.SearchWindow) bool {
	within := func(t time.Time) bool {
		return !t.Before(w.StartingFrom) && !t.After(w.EndingAt)
	}
	return within(slot.StartTime) || within(slot.EndTime)
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	from := page.Offset()
	if from < 0 || from >= len(items) || page.Size <= 0 {
		return nil
	}
	to := from + page.Size
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}

type memTx struct {
	store   *Store
	pending map[slotKey]struct{}
	created []domain.Slot
}

func (t *memTx) Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	return t.store.resolveLocked(id, expected)
}

func (t *memTx) Exists(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (bool, error) {
	k := slotKey{owner: ownerID, start: start.UnixNano(), end: end.UnixNano()}
	if _, ok := t.store.keys[k]; ok {
		return true, nil
	}
	_, ok := t.pending[k]
	return ok, nil
}

func (t *memTx) Create(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	if _, ok := t.store.users[slot.OwnerID]; !ok {
		return domain.Slot{}, store.ErrNotFound
	}
	exists, err := t.Exists(ctx, slot.OwnerID, slot.StartTime, slot.EndTime)
	if err != nil {
		return domain.Slot{}, err
	}
	if exists {
		return domain.Slot{}, store.ErrAlreadyExists
	}

	if slot.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Slot{}, err
		}
		slot.ID = id
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = t.store.now()
	}
	slot.StartTime = slot.StartTime.UTC()
	slot.EndTime = slot.EndTime.UTC()

	t.pending[keyOf(slot)] = struct{}{}
	t.created = append(t.created, slot)
	return slot, nil
}
