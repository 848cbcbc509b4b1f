// Package agendas publishes declared availability as hour slots and searches
// for slots shared by a candidate and a set of interviewers.
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

type Options struct {
	// MaxWindowDays caps the span of a search window. Zero means the default.
	MaxWindowDays int
	// MaxSlotsPerPublish caps how many slots one publish may expand into.
	// Zero means the default.
	MaxSlotsPerPublish int
	Metrics            metrics.Recorder
	Log                *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxWindowDays <= 0 {
		o.MaxWindowDays = domain.DefaultMaxSearchWindowDays
	}
	if o.MaxSlotsPerPublish <= 0 {
		o.MaxSlotsPerPublish = domain.DefaultMaxSlotsPerPublish
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

// Service bundles the publisher and the matcher over the same stores.
type Service struct {
	*Publisher
	*Matcher
}

func NewService(users store.UserResolver, repo store.AgendaRepository, opts Options) *Service {
	return &Service{
		Publisher: NewPublisher(users, repo, opts),
		Matcher:   NewMatcher(users, repo, opts),
	}
}

// resolveUser turns store.ErrNotFound into the matching domain error.
func resolveUser(ctx context.Context, r store.UserResolver, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	u, err := r.Resolve(ctx, id, expected)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		if expected == domain.UserTypeAny {
			return domain.User{}, domain.UserNotFound(id)
		}
		return domain.User{}, domain.UserOfTypeNotFound(id, expected)
	}
	return domain.User{}, fmt.Errorf("resolve user %s: %w", id, err)
}

func rejectReason(err error) string {
	var (
		notFound    *domain.NotFoundError
		invalidTime *domain.InvalidTimeError
		validation  *domain.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalidTime):
		return "invalid_time"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.As(err, &validation):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
