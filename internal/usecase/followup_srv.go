package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/internal/data/repository"
	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

// QuoteFollowUpDelay is how long after a quote is sent staff should chase it.
const QuoteFollowUpDelay = 2 * 24 * time.Hour

type FollowUpService interface {
	List(ctx context.Context, req *request.FollowUpListRequest) ([]response.FollowUpResponse, error)
	Complete(ctx context.Context, id string) (*response.FollowUpResponse, error)
}

type followUpService struct {
	followups repository.FollowUpRepository
	now       Clock
	loc       *time.Location
	timeout   time.Duration
	log       *zap.Logger
}

func NewFollowUpService(followups repository.FollowUpRepository, config *utils.Config, now Clock, log *zap.Logger) FollowUpService {
	return &followUpService{
		followups: followups,
		now:       now,
		loc:       config.App.Location(),
		timeout:   config.App.RequestTimeout,
		log:       log.With(zap.String("service", "followup")),
	}
}

// ScheduleQuoteFollowUp builds the high-priority task created alongside a Quote Sent transition.
// It is pure; the caller persists it in the same transaction as the status change.
func ScheduleQuoteFollowUp(b *entity.Booking, now time.Time, loc *time.Location) *entity.FollowUpTask {
	bookingID := b.ID
	today := entity.DateOnly(now.In(loc))
	return &entity.FollowUpTask{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
		},
		BookingID:     &bookingID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Type:          entity.FollowUpTypeQuote,
		Priority:      entity.FollowUpPriorityHigh,
		Status:        entity.FollowUpStatusPending,
		DueDate:       today.AddDate(0, 0, int(QuoteFollowUpDelay/(24*time.Hour))),
		Notes:         fmt.Sprintf("Follow up on sent quote for %s trip. Amount: %s", b.VehicleType, b.Amount.Display()),
	}
}

func (s *followUpService) List(ctx context.Context, req *request.FollowUpListRequest) ([]response.FollowUpResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	filter := repository.FollowUpFilter{Search: req.Search}
	if req.Status != "" {
		st := entity.FollowUpStatus(req.Status)
		filter.Status = &st
	}
	if req.Priority != "" {
		p := entity.FollowUpPriority(req.Priority)
		filter.Priority = &p
	}
	if req.Type != "" {
		t := entity.FollowUpType(req.Type)
		filter.Type = &t
	}

	tasks, err := s.followups.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list follow-ups", err)
	}

	out := make([]response.FollowUpResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, response.FollowUpToResponse(t))
	}
	return out, nil
}

func (s *followUpService) Complete(ctx context.Context, id string) (*response.FollowUpResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	taskID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	task, err := s.followups.FindByID(ctx, taskID)
	if err != nil {
		return nil, storeErr("find follow-up", err)
	}
	if task == nil {
		return nil, apperr.NotFound("follow-up", id)
	}
	if task.Status != entity.FollowUpStatusPending {
		return nil, apperr.InvalidState("follow-up %s is already %s", id, task.Status)
	}

	now := s.now()
	if err := s.followups.MarkCompleted(ctx, taskID, now); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperr.NotFound("follow-up", id)
		}
		return nil, storeErr("complete follow-up", err)
	}

	task.Status = entity.FollowUpStatusCompleted
	task.CompletedAt = &now
	s.log.Info("Follow-up completed", zap.String("followup_id", id))

	resp := response.FollowUpToResponse(task)
	return &resp, nil
}
