package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/agendas"
)

type agendasService interface {
	Publish(ctx context.Context, ownerID uuid.UUID, periods []domain.AvailabilityPeriod) ([]domain.Slot, error)
	Search(ctx context.Context, in agendas.SearchInput) (domain.Page[domain.Slot], error)
}

type AgendasServer struct {
	svc agendasService
	log *slog.Logger
}

var _ AgendasServiceServer = (*AgendasServer)(nil)

func NewAgendasServer(svc agendasService, log *slog.Logger) *AgendasServer {
	if log == nil {
		log = slog.Default()
	}
	return &AgendasServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.agendas")),
	}
}

func (s *AgendasServer) PublishAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "PublishAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	ownerID, err := uuidField(req, "userId")
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_user_id"))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var periods []domain.AvailabilityPeriod
	for i, v := range req.GetFields()["availabilities"].GetListValue().GetValues() {
		p := v.GetStructValue()
		if p == nil {
			return nil, status.Errorf(codes.InvalidArgument, "availabilities[%d] must be an object", i)
		}
		start, err := timeField(p, "start")
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "availabilities[%d]: %v", i, err)
		}
		end, err := timeField(p, "end")
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "availabilities[%d]: %v", i, err)
		}
		periods = append(periods, domain.AvailabilityPeriod{Start: start, End: end})
	}

	slots, err := s.svc.Publish(ctx, ownerID, periods)
	if err != nil {
		return nil, s.toStatus(log, err, slog.String("user_id", ownerID.String()))
	}

	out := make([]any, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotValue(slot))
	}
	resp, err := structpb.NewStruct(map[string]any{"slots": out})
	if err != nil {
		log.Error("encode response failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	log.Info("availability published", slog.String("user_id", ownerID.String()), slog.Int("slots", len(slots)))
	return resp, nil
}

func (s *AgendasServer) SearchAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "SearchAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	candidateID, err := uuidField(req, "candidateId")
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_candidate_id"))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var interviewerIDs []uuid.UUID
	for i, v := range req.GetFields()["interviewerIds"].GetListValue().GetValues() {
		id, err := uuid.Parse(strings.TrimSpace(v.GetStringValue()))
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "interviewerIds[%d] must be a UUID", i)
		}
		interviewerIDs = append(interviewerIDs, id)
	}

	from, err := timeField(req, "startingFrom")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	to, err := timeField(req, "endingAt")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	page, err := intField(req, "page")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	size, err := intField(req, "size")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.svc.Search(ctx, agendas.SearchInput{
		CandidateID:    candidateID,
		InterviewerIDs: interviewerIDs,
		StartingFrom:   from,
		EndingAt:       to,
		Page:           domain.PageRequest{Page: page, Size: size},
	})
	if err != nil {
		return nil, s.toStatus(log, err, slog.String("candidate_id", candidateID.String()))
	}

	content := make([]any, 0, len(result.Items))
	for _, slot := range result.Items {
		content = append(content, slotValue(slot))
	}
	resp, err := structpb.NewStruct(map[string]any{
		"content":       content,
		"page":          result.Page,
		"size":          result.Size,
		"totalElements": result.Total,
		"totalPages":    result.TotalPages(),
	})
	if err != nil {
		log.Error("encode response failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	log.Debug(
		"availability searched",
		slog.String("candidate_id", candidateID.String()),
		slog.Int("interviewers", len(interviewerIDs)),
		slog.Int("results", len(result.Items)),
	)
	return resp, nil
}

func (s *AgendasServer) toStatus(log *slog.Logger, err error, attrs ...any) error {
	var (
		notFound    *domain.NotFoundError
		invalidTime *domain.InvalidTimeError
		validation  *domain.ValidationError
	)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		log.Info("slot already exists", append(attrs, slog.Any("err", err))...)
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.As(err, &notFound):
		log.Info("user not found", append(attrs, slog.Any("err", err))...)
		return status.Error(codes.NotFound, notFound.Error())
	case errors.As(err, &invalidTime):
		log.Warn("invalid request", append(attrs, slog.Any("err", err))...)
		return status.Error(codes.InvalidArgument, invalidTime.Error())
	case errors.As(err, &validation):
		log.Warn("invalid request", append(attrs, slog.Any("err", err))...)
		return status.Error(codes.InvalidArgument, validation.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	log.Error("request failed", append(attrs, slog.Any("err", err))...)
	return status.Error(codes.Internal, "internal error")
}

func slotValue(s domain.Slot) map[string]any {
	return map[string]any{
		"id":     s.ID.String(),
		"userId": s.OwnerID.String(),
		"start":  s.StartTime.UTC().Format(time.RFC3339),
		"end":    s.EndTime.UTC().Format(time.RFC3339),
	}
}

func uuidField(s *structpb.Struct, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(s.GetFields()[key].GetStringValue())
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID", key)
	}
	return id, nil
}

func timeField(s *structpb.Struct, key string) (time.Time, error) {
	t, err := domain.ParseDateTime(s.GetFields()[key].GetStringValue())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return 0, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}
