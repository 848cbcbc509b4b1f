package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	m := user
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.User{}, mapWriteError(err)
	}
	return m, nil
}

func (r *UserRepo) Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	return resolveUser(ctx, r.db, id, expected)
}

func (r *UserRepo) ListUsers(ctx context.Context, userType domain.UserType, page domain.PageRequest) (domain.Page[domain.User], error) {
	var rows []domain.User
	q := r.db.NewSelect().Model(&rows)
	if userType != domain.UserTypeAny {
		q = q.Where("user_type = ?", userType)
	}
	total, err := q.
		OrderExpr("created_at ASC").
		OrderExpr("id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return domain.NewPage(rows, page, total), nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func resolveUser(ctx context.Context, db bun.IDB, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	var u domain.User
	q := db.NewSelect().Model(&u).Where("id = ?", id)
	if expected != domain.UserTypeAny {
		q = q.Where("user_type = ?", expected)
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("resolve user %s: %w", id, err)
	}
	return u, nil
}
