package domain

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyWorkout      NotificationType = "workout"
	NotifyNutrition    NotificationType = "nutrition"
	NotifyReminder     NotificationType = "reminder"
	NotifyApproval     NotificationType = "approval"
	NotifySystem       NotificationType = "system"
	NotifyMessage      NotificationType = "message"
	NotifySubscription NotificationType = "subscription"
	NotifyProgress     NotificationType = "progress"
	NotifyAchievement  NotificationType = "achievement"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyWorkout, NotifyNutrition, NotifyReminder, NotifyApproval, NotifySystem,
		NotifyMessage, NotifySubscription, NotifyProgress, NotifyAchievement:
		return true
	}
	return false
}

// NotificationPriority orders notifications in the inbox.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is a user-addressed inbox message. Soft-deleted rows are
// excluded from every listing and count but retained for audit.
type Notification struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	UserID    uint                 `gorm:"not null;index" json:"userId"`
	Title     string               `gorm:"not null" json:"title"`
	Message   string               `gorm:"not null" json:"message"`
	Type      NotificationType     `gorm:"not null" json:"type"`
	Priority  NotificationPriority `gorm:"default:medium" json:"priority"`
	IsRead    bool                 `gorm:"default:false;index" json:"isRead"`
	IsDeleted bool                 `gorm:"default:false" json:"-"`
	ActionURL string               `json:"actionUrl,omitempty"`
	// ActionData carries an optional structured payload for client-side
	// actions (deep links, entity ids).
	ActionData datatypes.JSON `json:"actionData,omitempty"`
	ImageURL   string         `json:"imageUrl,omitempty"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
	SenderID   *uint          `json:"senderId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	ReadAt     *time.Time     `json:"readAt,omitempty"`
}

// MessageType classifies a direct message between users.
type MessageType string

const (
	MessageText            MessageType = "text"
	MessageWorkoutFeedback MessageType = "workout_feedback"
	MessageNutritionNote   MessageType = "nutrition_note"
	MessageSystem          MessageType = "system"
)

// Message is free-form sender-to-recipient communication, optionally tagged
// to a related record.
type Message struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	SenderID          uint        `gorm:"not null;index" json:"senderId"`
	RecipientID       uint        `gorm:"not null;index" json:"recipientId"`
	Subject           string      `json:"subject,omitempty"`
	Body              string      `gorm:"column:message;not null" json:"message"`
	IsRead            bool        `gorm:"default:false" json:"isRead"`
	MessageType       MessageType `gorm:"default:text" json:"messageType"`
	RelatedRecordID   *uint       `json:"relatedRecordId,omitempty"`
	RelatedRecordType string      `json:"relatedRecordType,omitempty"`
	SentAt            time.Time   `json:"sentAt"`
}
