package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UserType string

const (
	// UserTypeAny matches a user of either type when resolving.
	UserTypeAny         UserType = ""
	UserTypeCandidate   UserType = "CANDIDATE"
	UserTypeInterviewer UserType = "INTERVIEWER"
)

const (
	UserNameMinLength = 3
	UserNameMaxLength = 60
)

func ParseUserType(s string) (UserType, error) {
	switch t := UserType(strings.ToUpper(strings.TrimSpace(s))); t {
	case UserTypeCandidate, UserTypeInterviewer:
		return t, nil
	default:
		return "", validationErrorf("unsupported user type %q", s)
	}
}

// Matches reports whether a user of type t satisfies an expected type.
func (t UserType) Matches(expected UserType) bool {
	return expected == UserTypeAny || t == expected
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Type      UserType  `bun:"user_type,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}
