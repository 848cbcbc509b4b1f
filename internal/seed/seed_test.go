package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/agendas"
	"interviewcal/internal/service/users"
	"interviewcal/internal/store"
	"interviewcal/internal/store/memory"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

const fixtureYAML = `
users:
  - name: Cara Candidate
    userType: CANDIDATE
    availabilities:
      - start: 2026-03-02T09:00:00
        end: 2026-03-02T11:00:00
  - name: Ivan Interviewer
    userType: interviewer
    availabilities:
      - start: "2026-03-02T10:00:00"
        end: "2026-03-02T11:00:00"
    slots:
      - start: "2026-03-03T13:00:00"
        end: "2026-03-03T15:00:00"
`

func newSeeder(s *memory.Store) *Seeder {
	return NewSeeder(
		users.NewService(s, discardLog),
		agendas.NewService(s, s, agendas.Options{Log: discardLog}),
		discardLog,
	)
}

func TestApply_SeedsUsersAndSlots(t *testing.T) {
	ctx := context.Background()
	fx, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)
	require.Equal(t, "2026-03-02T09:00:00", fx.Users[0].Availabilities[0].Start)

	s := memory.New()
	res, err := newSeeder(s).Apply(ctx, fx)
	require.NoError(t, err)
	require.Len(t, res.Users, 2)
	require.Equal(t, 4, res.Slots)
	require.Equal(t, domain.UserTypeInterviewer, res.Users[1].Type)

	page, err := s.SearchAvailability(ctx, store.AvailabilityQuery{
		CandidateID:    res.Users[0].ID,
		InterviewerIDs: []uuid.UUID{res.Users[1].ID},
		Window: domain.SearchWindow{
			StartingFrom: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			EndingAt:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		Page: domain.PageRequest{Size: domain.DefaultPageSize},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), page.Items[0].StartTime)
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	fx := Fixtures{Users: []UserFixture{
		{Name: "Cara Candidate", UserType: "CANDIDATE"},
		{Name: "Ivan Interviewer", UserType: "INTERVIEWER", Availabilities: []PeriodFixture{
			{Start: "2026-03-02T10:30:00", End: "2026-03-02T11:00:00"},
		}},
		{Name: "Never Reached", UserType: "INTERVIEWER"},
	}}

	s := memory.New()
	res, err := newSeeder(s).Apply(context.Background(), fx)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "err = %v", err)
	require.ErrorContains(t, err, `users[1] "Ivan Interviewer": publish`)
	require.Len(t, res.Users, 2)

	all, err := s.ListUsers(context.Background(), domain.UserTypeAny, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
}

func TestApply_RejectsBadTimeBeforeCreatingUser(t *testing.T) {
	fx := Fixtures{Users: []UserFixture{
		{Name: "Cara Candidate", UserType: "CANDIDATE", Availabilities: []PeriodFixture{{Start: "monday", End: "tuesday"}}},
	}}

	s := memory.New()
	res, err := newSeeder(s).Apply(context.Background(), fx)
	require.ErrorContains(t, err, "availabilities[0].start")
	require.Empty(t, res.Users)
}

func TestApply_SingleSlotsKeepTheirSpan(t *testing.T) {
	ctx := context.Background()
	fx, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)

	s := memory.New()
	res, err := newSeeder(s).Apply(ctx, fx)
	require.NoError(t, err)

	// The two-hour single slot is stored once, so re-creating it collides.
	pub := agendas.NewPublisher(s, s, agendas.Options{Log: discardLog})
	_, err = pub.CreateOne(ctx, domain.Slot{
		OwnerID:   res.Users[1].ID,
		StartTime: time.Date(2026, 3, 3, 13, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("users:\n  - name: Cara\n    role: CANDIDATE\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	fx, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read fixtures")
}

func TestDemoFixturesParse(t *testing.T) {
	fx, err := LoadFile(filepath.Join("..", "..", "fixtures", "demo.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, fx.Users)
	for _, u := range fx.Users {
		_, err := parsePeriods("availabilities", u.Availabilities)
		require.NoError(t, err, u.Name)
		_, err = parsePeriods("slots", u.Slots)
		require.NoError(t, err, u.Name)
	}
}
