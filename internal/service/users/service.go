package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

type Service struct {
	repo store.UserRepository
	log  *slog.Logger
}

func NewService(repo store.UserRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log.With(slog.String("component", "users"))}
}

type CreateInput struct {
	Name string
	Type string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, domain.NewValidationError("name is required")
	}
	if n := utf8.RuneCountInString(name); n < domain.UserNameMinLength || n > domain.UserNameMaxLength {
		return domain.User{}, domain.NewValidationError(fmt.Sprintf(
			"name must be between %d and %d characters", domain.UserNameMinLength, domain.UserNameMaxLength,
		))
	}
	if strings.TrimSpace(in.Type) == "" {
		return domain.User{}, domain.NewValidationError("userType is required")
	}
	typ, err := domain.ParseUserType(in.Type)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.repo.CreateUser(ctx, domain.User{Name: name, Type: typ})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user created", slog.String("user_id", u.ID.String()), slog.String("user_type", string(u.Type)))
	return u, nil
}

// List pages through users of one type, CANDIDATE when userType is blank.
func (s *Service) List(ctx context.Context, userType string, page domain.PageRequest) (domain.Page[domain.User], error) {
	typ := domain.UserTypeCandidate
	if strings.TrimSpace(userType) != "" {
		parsed, err := domain.ParseUserType(userType)
		if err != nil {
			return domain.Page[domain.User]{}, err
		}
		typ = parsed
	}
	req, err := page.Normalize()
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return s.repo.ListUsers(ctx, typ, req)
}
