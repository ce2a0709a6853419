package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/skillswap/internal/entity"
	messageDto "anoa.com/skillswap/internal/modules/message/dto"
	messageRepo "anoa.com/skillswap/internal/modules/message/repository"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	swapRepo "anoa.com/skillswap/internal/modules/swap/repository"
	userDto "anoa.com/skillswap/internal/modules/user/dto"
	"anoa.com/skillswap/pkg/apperror"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/ratelimiter"
	"anoa.com/skillswap/pkg/sanitize"
	"anoa.com/skillswap/pkg/validator"
	"github.com/google/uuid"
)

type MessageService interface {
	Send(ctx context.Context, senderID, swapID uuid.UUID, req messageDto.SendMessageRequest) (*messageDto.MessageResponse, error)
	List(ctx context.Context, callerID, swapID uuid.UUID) ([]messageDto.MessageResponse, error)
}

type messageService struct {
	repo          messageRepo.MessageRepository
	swapRepo      swapRepo.SwapRepository
	notifications notifService.NotificationService
	limiter       *ratelimiter.Limiter
	cooldown      time.Duration
	tx            database.Transactor
}

func NewMessageService(
	repo messageRepo.MessageRepository,
	swapRepo swapRepo.SwapRepository,
	notifications notifService.NotificationService,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	tx database.Transactor,
) MessageService {
	return &messageService{
		repo:          repo,
		swapRepo:      swapRepo,
		notifications: notifications,
		limiter:       limiter,
		cooldown:      cooldown,
		tx:            tx,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, swapID uuid.UUID, req messageDto.SendMessageRequest) (*messageDto.MessageResponse, error) {
	swap, err := s.swapRepo.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.IsParticipant(senderID) {
		return nil, fmt.Errorf("only swap participants can send messages: %w", apperror.ErrForbidden)
	}

	req.Content = sanitize.Text(req.Content)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx, senderID, ratelimiter.ScopeMessage, s.cooldown)
	if err != nil {
		return nil, err
	}
	sendFailed := true
	defer func() {
		if sendFailed {
			release()
		}
	}()

	sender := swap.Student
	if senderID == swap.TeacherID {
		sender = swap.Teacher
	}

	message := &entity.Message{
		SwapID:     swap.ID,
		SenderID:   senderID,
		ReceiverID: swap.Partner(senderID),
		Content:    req.Content,
	}
	notification := &entity.Notification{
		UserID:  message.ReceiverID,
		Type:    entity.NotificationMessageReceived,
		Message: fmt.Sprintf("New message from %s", sender.Name),
		Link:    fmt.Sprintf("/dashboard?tab=active-swaps&swapId=%s", swap.ID),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, message); err != nil {
			return err
		}
		return s.notifications.Create(ctx, notification)
	})
	if err != nil {
		return nil, err
	}
	sendFailed = false

	s.notifications.Publish(ctx, notification)

	message.Sender = sender
	res := toResponse(message)
	return &res, nil
}

func (s *messageService) List(ctx context.Context, callerID, swapID uuid.UUID) ([]messageDto.MessageResponse, error) {
	swap, err := s.swapRepo.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.IsParticipant(callerID) {
		return nil, fmt.Errorf("only swap participants can read messages: %w", apperror.ErrForbidden)
	}

	messages, err := s.repo.ListBySwap(ctx, swap.ID)
	if err != nil {
		return nil, err
	}

	res := make([]messageDto.MessageResponse, len(messages))
	for i := range messages {
		res[i] = toResponse(&messages[i])
	}
	return res, nil
}

func toResponse(m *entity.Message) messageDto.MessageResponse {
	return messageDto.MessageResponse{
		ID:         m.ID,
		SwapID:     m.SwapID,
		Sender:     userDto.ToSummary(&m.Sender),
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
