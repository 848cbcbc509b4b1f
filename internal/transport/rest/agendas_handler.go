package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/agendas"
)

const maxBodyBytes = 1 << 20

// localDateTime decodes either a naive local time or an RFC 3339 timestamp.
type localDateTime struct {
	time.Time
}

func (t *localDateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := domain.ParseDateTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

type periodRequest struct {
	Start localDateTime `json:"start"`
	End   localDateTime `json:"end"`
}

type publishRequest struct {
	UserID         string          `json:"userId"`
	Availabilities []periodRequest `json:"availabilities"`
}

type slotResponse struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:     s.ID.String(),
		UserID: s.OwnerID.String(),
		Start:  s.StartTime.UTC(),
		End:    s.EndTime.UTC(),
	}
}

type agendaHandler struct {
	svc AgendaService
	log *slog.Logger
}

func (h *agendaHandler) publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ownerID, err := parseUUID("userId", req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	periods := make([]domain.AvailabilityPeriod, 0, len(req.Availabilities))
	for _, a := range req.Availabilities {
		periods = append(periods, domain.AvailabilityPeriod{Start: a.Start.Time, End: a.End.Time})
	}

	slots, err := h.svc.Publish(r.Context(), ownerID, periods)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *agendaHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	candidateID, err := parseUUID("candidateId", q.Get("candidateId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	interviewerIDs, err := parseInterviewerIDs(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := domain.ParseDateTime(q.Get("startingFrom"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "startingFrom: "+err.Error())
		return
	}
	to, err := domain.ParseDateTime(q.Get("endingAt"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "endingAt: "+err.Error())
		return
	}
	page, err := parsePageRequest(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Search(r.Context(), agendas.SearchInput{
		CandidateID:    candidateID,
		InterviewerIDs: interviewerIDs,
		StartingFrom:   from,
		EndingAt:       to,
		Page:           page,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(result, toSlotResponse))
}

// parseInterviewerIDs accepts repeated keys, the bracketed form and comma
// separated values.
func parseInterviewerIDs(q url.Values) ([]uuid.UUID, error) {
	raw := append(append([]string{}, q["interviewerIds"]...), q["interviewerIds[]"]...)
	var ids []uuid.UUID
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, fmt.Errorf("interviewerIds: invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parsePageRequest(q url.Values) (domain.PageRequest, error) {
	var p domain.PageRequest
	for _, f := range []struct {
		key string
		dst *int
	}{{"page", &p.Page}, {"size", &p.Size}} {
		v := strings.TrimSpace(q.Get(f.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.PageRequest{}, fmt.Errorf("%s must be an integer", f.key)
		}
		*f.dst = n
	}
	return p, nil
}

func parseUUID(field, v string) (uuid.UUID, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: invalid id %q", field, v)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return fmt.Errorf("malformed request body: %v", err)
	}
	return nil
}
