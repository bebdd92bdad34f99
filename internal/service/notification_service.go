package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidNotification  = errors.New("invalid notification type or priority")
	ErrMessageNotFound      = errors.New("message not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
)

// NotifyInput describes a notification to deliver.
type NotifyInput struct {
	UserID     uint
	Title      string
	Message    string
	Type       domain.NotificationType
	Priority   domain.NotificationPriority
	ActionURL  string
	ActionData datatypes.JSON
	ExpiresAt  *time.Time
	SenderID   *uint
}

// MessageInput describes a direct message to send.
type MessageInput struct {
	RecipientID       uint
	Subject           string
	Body              string
	MessageType       domain.MessageType
	RelatedRecordID   *uint
	RelatedRecordType string
}

type NotificationService interface {
	// Create validates and persists a notification, failing loudly. Used by
	// the HTTP surface.
	Create(ctx context.Context, input NotifyInput) (*domain.Notification, error)
	// Notify is the best-effort variant other services call for side-effect
	// notifications: failures are logged, never propagated.
	Notify(ctx context.Context, input NotifyInput)

	List(ctx context.Context, userID uint, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id, userID uint) error

	SendMessage(ctx context.Context, senderID uint, input MessageInput) (*domain.Message, error)
	Inbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error)
	Outbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error)
	MarkMessageRead(ctx context.Context, id, recipientID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
	log              *logrus.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	log *logrus.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		log:              log,
	}
}

func (s *notificationService) Create(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	if input.Title == "" || input.Message == "" {
		return nil, errors.New("title and message cannot be empty")
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidNotification
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidNotification
	}
	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	notification := &domain.Notification{
		UserID:     input.UserID,
		Title:      input.Title,
		Message:    input.Message,
		Type:       input.Type,
		Priority:   input.Priority,
		ActionURL:  input.ActionURL,
		ActionData: input.ActionData,
		ExpiresAt:  input.ExpiresAt,
		SenderID:   input.SenderID,
	}
	id, err := s.notificationRepo.Create(ctx, notification)
	if err != nil {
		return nil, err
	}
	notification.ID = id
	return notification, nil
}

func (s *notificationService) Notify(ctx context.Context, input NotifyInput) {
	if _, err := s.Create(ctx, input); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"userId": input.UserID,
			"type":   input.Type,
		}).Warn("notification delivery failed")
	}
}

func (s *notificationService) List(ctx context.Context, userID uint, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error) {
	return s.notificationRepo.List(ctx, userID, unreadOnly, page)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID uint) error {
	if err := s.notificationRepo.SoftDelete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) SendMessage(ctx context.Context, senderID uint, input MessageInput) (*domain.Message, error) {
	if input.Body == "" {
		return nil, errors.New("message body cannot be empty")
	}
	if input.MessageType == "" {
		input.MessageType = domain.MessageText
	}
	recipient, err := s.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	message := &domain.Message{
		SenderID:          senderID,
		RecipientID:       recipient.ID,
		Subject:           input.Subject,
		Body:              input.Body,
		MessageType:       input.MessageType,
		RelatedRecordID:   input.RelatedRecordID,
		RelatedRecordType: input.RelatedRecordType,
		SentAt:            time.Now(),
	}
	id, err := s.messageRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = id

	// Mirror the message into the recipient's notification inbox.
	preview := input.Subject
	if preview == "" {
		preview = "You received a new message."
	}
	s.Notify(ctx, NotifyInput{
		UserID:   recipient.ID,
		Title:    "New message",
		Message:  preview,
		Type:     domain.NotifyMessage,
		Priority: domain.PriorityMedium,
		SenderID: &senderID,
	})

	return message, nil
}

func (s *notificationService) Inbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error) {
	return s.messageRepo.ListInbox(ctx, userID, page)
}

func (s *notificationService) Outbox(ctx context.Context, userID uint, page repository.Page) ([]domain.Message, int64, error) {
	return s.messageRepo.ListOutbox(ctx, userID, page)
}

func (s *notificationService) MarkMessageRead(ctx context.Context, id, recipientID uint) error {
	if err := s.messageRepo.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}
