package store

import (
	"errors"

	"interviewcal/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = domain.ErrAlreadyExists
)
