package store

import (
	"context"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
)

// UserResolver looks a user up by id, returning ErrNotFound when it does not
// exist or its type does not match expected. domain.UserTypeAny matches any type.
type UserResolver interface {
	Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error)
}

type UserRepository interface {
	UserResolver

	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	ListUsers(ctx context.Context, userType domain.UserType, page domain.PageRequest) (domain.Page[domain.User], error)
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
