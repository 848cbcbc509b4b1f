package rest

import (
	"log/slog"
	"net/http"
	"time"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/users"
)

type createUserRequest struct {
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		UserType:  string(u.Type),
		CreatedAt: u.CreatedAt.UTC(),
	}
}

type userHandler struct {
	svc UserService
	log *slog.Logger
}

func (h *userHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Create(r.Context(), users.CreateInput{Name: req.Name, Type: req.UserType})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *userHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePageRequest(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.List(r.Context(), q.Get("userType"), page)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(result, toUserResponse))
}
