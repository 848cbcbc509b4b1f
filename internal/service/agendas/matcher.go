package agendas

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/metrics"
	"interviewcal/internal/store"
)

type SearchInput struct {
	CandidateID    uuid.UUID
	InterviewerIDs []uuid.UUID
	StartingFrom   time.Time
	EndingAt       time.Time
	Page           domain.PageRequest
}

type Matcher struct {
	users         store.UserResolver
	repo          store.AgendaRepository
	maxWindowDays int
	metrics       metrics.Recorder
	log           *slog.Logger
	now           func() time.Time
}

func NewMatcher(users store.UserResolver, repo store.AgendaRepository, opts Options) *Matcher {
	opts = opts.withDefaults()
	return &Matcher{
		users:         users,
		repo:          repo,
		maxWindowDays: opts.MaxWindowDays,
		metrics:       opts.Metrics,
		log:           opts.Log.With(slog.String("component", "agendas.matcher")),
		now:           time.Now,
	}
}

// Search returns the interviewer slots that coincide with one of the
// candidate's slots inside the window. A slot shared with several
// interviewers appears once per interviewer.
func (m *Matcher) Search(ctx context.Context, in SearchInput) (domain.Page[domain.Slot], error) {
	started := m.now()
	page, err := m.search(ctx, in)
	if err != nil {
		m.metrics.RecordRejected("search", rejectReason(err))
		return domain.Page[domain.Slot]{}, err
	}

	elapsed := m.now().Sub(started)
	m.metrics.RecordSearch(elapsed, len(page.Items))
	m.log.Debug(
		"availability searched",
		slog.String("candidate_id", in.CandidateID.String()),
		slog.Int("interviewers", len(in.InterviewerIDs)),
		slog.Int("results", len(page.Items)),
		slog.Int("total", page.Total),
		slog.Duration("duration", elapsed),
	)
	return page, nil
}

func (m *Matcher) search(ctx context.Context, in SearchInput) (domain.Page[domain.Slot], error) {
	if _, err := resolveUser(ctx, m.users, in.CandidateID, domain.UserTypeCandidate); err != nil {
		return domain.Page[domain.Slot]{}, err
	}
	for _, id := range in.InterviewerIDs {
		if _, err := resolveUser(ctx, m.users, id, domain.UserTypeInterviewer); err != nil {
			return domain.Page[domain.Slot]{}, err
		}
	}

	window := domain.SearchWindow{StartingFrom: in.StartingFrom.UTC(), EndingAt: in.EndingAt.UTC()}
	if err := domain.ValidateWindow(window, m.maxWindowDays); err != nil {
		return domain.Page[domain.Slot]{}, err
	}

	req, err := in.Page.Normalize()
	if err != nil {
		return domain.Page[domain.Slot]{}, err
	}

	if len(in.InterviewerIDs) == 0 {
		return domain.NewPage[domain.Slot](nil, req, 0), nil
	}

	page, err := m.repo.SearchAvailability(ctx, store.AvailabilityQuery{
		CandidateID:    in.CandidateID,
		InterviewerIDs: in.InterviewerIDs,
		Window:         window,
		Page:           req,
	})
	if err != nil {
		return domain.Page[domain.Slot]{}, fmt.Errorf("search availability: %w", err)
	}
	return page, nil
}
