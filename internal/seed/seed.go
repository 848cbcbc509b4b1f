// Package seed loads demo users and their availability from a YAML file.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/users"
)

type Fixtures struct {
	Users []UserFixture `yaml:"users"`
}

type UserFixture struct {
	Name           string          `yaml:"name"`
	UserType       string          `yaml:"userType"`
	Availabilities []PeriodFixture `yaml:"availabilities"`
	// Slots are stored as given, one slot each, without hourly expansion.
	Slots []PeriodFixture `yaml:"slots"`
}

// PeriodFixture holds local date-times, with or without an offset.
type PeriodFixture struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func Parse(data []byte) (Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return fx, nil
}

func LoadFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return Parse(data)
}

type userCreator interface {
	Create(ctx context.Context, in users.CreateInput) (domain.User, error)
}

type availabilityPublisher interface {
	Publish(ctx context.Context, ownerID uuid.UUID, periods []domain.AvailabilityPeriod) ([]domain.Slot, error)
	CreateOne(ctx context.Context, slot domain.Slot) (domain.Slot, error)
}

type Result struct {
	Users []domain.User
	Slots int
}

type Seeder struct {
	users   userCreator
	agendas availabilityPublisher
	log     *slog.Logger
}

func NewSeeder(users userCreator, agendas availabilityPublisher, log *slog.Logger) *Seeder {
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{users: users, agendas: agendas, log: log.With(slog.String("component", "seed"))}
}

// Apply creates every user in order and publishes its availability. It stops
// at the first failure; earlier users stay committed.
func (s *Seeder) Apply(ctx context.Context, fx Fixtures) (Result, error) {
	var res Result
	for i, uf := range fx.Users {
		periods, err := parsePeriods("availabilities", uf.Availabilities)
		if err != nil {
			return res, fmt.Errorf("users[%d] %q: %w", i, uf.Name, err)
		}
		singles, err := parsePeriods("slots", uf.Slots)
		if err != nil {
			return res, fmt.Errorf("users[%d] %q: %w", i, uf.Name, err)
		}

		u, err := s.users.Create(ctx, users.CreateInput{Name: uf.Name, Type: uf.UserType})
		if err != nil {
			return res, fmt.Errorf("users[%d] %q: create: %w", i, uf.Name, err)
		}
		res.Users = append(res.Users, u)

		slots, err := s.agendas.Publish(ctx, u.ID, periods)
		if err != nil {
			return res, fmt.Errorf("users[%d] %q: publish: %w", i, uf.Name, err)
		}
		res.Slots += len(slots)

		for j, p := range singles {
			if _, err := s.agendas.CreateOne(ctx, domain.Slot{OwnerID: u.ID, StartTime: p.Start, EndTime: p.End}); err != nil {
				return res, fmt.Errorf("users[%d] %q: slots[%d]: %w", i, uf.Name, j, err)
			}
			res.Slots++
		}

		s.log.Info(
			"user seeded",
			slog.String("user_id", u.ID.String()),
			slog.String("user_type", string(u.Type)),
			slog.Int("slots", len(slots)+len(singles)),
		)
	}
	return res, nil
}

func parsePeriods(field string, in []PeriodFixture) ([]domain.AvailabilityPeriod, error) {
	out := make([]domain.AvailabilityPeriod, 0, len(in))
	for j, p := range in {
		start, err := domain.ParseDateTime(p.Start)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].start: %w", field, j, err)
		}
		end, err := domain.ParseDateTime(p.End)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].end: %w", field, j, err)
		}
		out = append(out, domain.AvailabilityPeriod{Start: start, End: end})
	}
	return out, nil
}
