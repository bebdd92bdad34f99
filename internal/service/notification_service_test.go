package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

func firstPage() repository.Page {
	return repository.Page{Number: 1, Limit: 20}
}

func TestCreateNotification(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	user, _ := env.store.seedAthlete("athlete@example.com")

	n, err := env.notifier.Create(ctx, NotifyInput{
		UserID:  user.ID,
		Title:   "Heads up",
		Message: "Your plan was updated.",
		Type:    domain.NotifyNutrition,
	})
	require.NoError(t, err)
	assert.False(t, n.IsRead)
	assert.Equal(t, domain.PriorityMedium, n.Priority)

	t.Run("invalid type", func(t *testing.T) {
		_, err := env.notifier.Create(ctx, NotifyInput{
			UserID: user.ID, Title: "x", Message: "y", Type: "carrier_pigeon",
		})
		assert.ErrorIs(t, err, ErrInvalidNotification)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := env.notifier.Create(ctx, NotifyInput{
			UserID: 9999, Title: "x", Message: "y", Type: domain.NotifySystem,
		})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestNotificationReadLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	user, _ := env.store.seedAthlete("athlete@example.com")
	other, _ := env.store.seedAthlete("other@example.com")

	for i := 0; i < 3; i++ {
		_, err := env.notifier.Create(ctx, NotifyInput{
			UserID: user.ID, Title: "Reminder", Message: "Workout today.", Type: domain.NotifyWorkout,
		})
		require.NoError(t, err)
	}

	count, err := env.notifier.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, total, err := env.notifier.List(ctx, user.ID, true, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// Another user cannot mark someone else's notification read.
	err = env.notifier.MarkRead(ctx, list[0].ID, other.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, env.notifier.MarkRead(ctx, list[0].ID, user.ID))
	count, _ = env.notifier.UnreadCount(ctx, user.ID)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.notifier.MarkAllRead(ctx, user.ID))
	count, _ = env.notifier.UnreadCount(ctx, user.ID)
	assert.Equal(t, int64(0), count)

	// MarkAllRead on an empty inbox is a no-op, not an error.
	assert.NoError(t, env.notifier.MarkAllRead(ctx, user.ID))
}

func TestDeleteNotificationHidesIt(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	user, _ := env.store.seedAthlete("athlete@example.com")
	n, err := env.notifier.Create(ctx, NotifyInput{
		UserID: user.ID, Title: "Old news", Message: "Expired promo.", Type: domain.NotifySystem,
	})
	require.NoError(t, err)

	require.NoError(t, env.notifier.Delete(ctx, n.ID, user.ID))
	_, total, err := env.notifier.List(ctx, user.ID, false, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	err = env.notifier.Delete(ctx, n.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestSendMessage(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	sender, _ := env.store.seedTrainer("coach@example.com", 10)
	recipient, _ := env.store.seedAthlete("athlete@example.com")

	_, err := env.notifier.SendMessage(ctx, sender.ID, MessageInput{RecipientID: 9999, Body: "hi"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	msg, err := env.notifier.SendMessage(ctx, sender.ID, MessageInput{
		RecipientID: recipient.ID,
		Subject:     "Form check",
		Body:        "Send me a video of your next squat session.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageText, msg.MessageType)
	assert.False(t, msg.IsRead)

	inbox, total, err := env.notifier.Inbox(ctx, recipient.ID, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, inbox, 1)

	outbox, total, err := env.notifier.Outbox(ctx, sender.ID, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, outbox, 1)

	// The recipient's notification inbox mirrors the message.
	count, err := env.notifier.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Only the recipient can mark it read.
	err = env.notifier.MarkMessageRead(ctx, msg.ID, sender.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.NoError(t, env.notifier.MarkMessageRead(ctx, msg.ID, recipient.ID))
}
