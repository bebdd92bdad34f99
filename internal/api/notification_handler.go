package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// NotificationHandler serves the notification inbox and direct messages.
type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type CreateNotificationRequest struct {
	UserID     uint                        `json:"userId" binding:"required"`
	Title      string                      `json:"title" binding:"required"`
	Message    string                      `json:"message" binding:"required"`
	Type       domain.NotificationType     `json:"type" binding:"required"`
	Priority   domain.NotificationPriority `json:"priority"`
	ActionURL  string                      `json:"actionUrl"`
	ActionData datatypes.JSON              `json:"actionData"`
	ExpiresAt  *time.Time                  `json:"expiresAt"`
}

type SendMessageRequest struct {
	RecipientID       uint               `json:"recipientId" binding:"required"`
	Subject           string             `json:"subject"`
	Body              string             `json:"message" binding:"required"`
	MessageType       domain.MessageType `json:"messageType" binding:"omitempty,oneof=text workout_feedback nutrition_note system"`
	RelatedRecordID   *uint              `json:"relatedRecordId"`
	RelatedRecordType string             `json:"relatedRecordType"`
}

func (h *NotificationHandler) Create(c *gin.Context) {
	senderID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), service.NotifyInput{
		UserID:     req.UserID,
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		Priority:   req.Priority,
		ActionURL:  req.ActionURL,
		ActionData: req.ActionData,
		ExpiresAt:  req.ExpiresAt,
		SenderID:   &senderID,
	})
	if err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	page, limit := pageQuery(c, 20)

	notifications, total, err := h.notificationService.List(c.Request.Context(), userID,
		c.Query("unread") == "true",
		repository.Page{Number: page, Limit: limit})
	if err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": total, "page": page, "limit": limit})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), id, userID); err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), id, userID); err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

func (h *NotificationHandler) SendMessage(c *gin.Context) {
	senderID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	message, err := h.notificationService.SendMessage(c.Request.Context(), senderID, service.MessageInput{
		RecipientID:       req.RecipientID,
		Subject:           req.Subject,
		Body:              req.Body,
		MessageType:       req.MessageType,
		RelatedRecordID:   req.RelatedRecordID,
		RelatedRecordType: req.RelatedRecordType,
	})
	if err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *NotificationHandler) Inbox(c *gin.Context) {
	h.listMessages(c, true)
}

func (h *NotificationHandler) Outbox(c *gin.Context) {
	h.listMessages(c, false)
}

func (h *NotificationHandler) listMessages(c *gin.Context, inbox bool) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	page, limit := pageQuery(c, 20)
	pg := repository.Page{Number: page, Limit: limit}

	var (
		messages []domain.Message
		total    int64
	)
	if inbox {
		messages, total, err = h.notificationService.Inbox(c.Request.Context(), userID, pg)
	} else {
		messages, total, err = h.notificationService.Outbox(c.Request.Context(), userID, pg)
	}
	if err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": total, "page": page, "limit": limit})
}

func (h *NotificationHandler) MarkMessageRead(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.notificationService.MarkMessageRead(c.Request.Context(), id, userID); err != nil {
		abortOnNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message marked read"})
}

func abortOnNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidNotification):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
