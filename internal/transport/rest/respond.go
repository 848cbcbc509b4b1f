package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"interviewcal/internal/domain"
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type pageResponse[T any] struct {
	Content       []T `json:"content"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

func toPageResponse[S, T any](p domain.Page[S], convert func(S) T) pageResponse[T] {
	content := make([]T, 0, len(p.Items))
	for _, item := range p.Items {
		content = append(content, convert(item))
	}
	return pageResponse[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{StatusCode: status, Message: msg})
}

// writeServiceError maps domain errors onto status codes. Anything unknown is
// logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		notFound    *domain.NotFoundError
		invalidTime *domain.InvalidTimeError
		validation  *domain.ValidationError
	)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalidTime):
		writeError(w, http.StatusBadRequest, invalidTime.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	default:
		log.Error("request failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
