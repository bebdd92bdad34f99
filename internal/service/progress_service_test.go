package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

func ptr(v float64) *float64 { return &v }

func TestRecordProgress(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	svc := NewProgressService(env.progress, env.athletes, fakeFiles{}, env.log)
	ctx := context.Background()

	athleteUser, _ := env.store.seedAthlete("athlete@example.com")

	record, err := svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{
		RecordType: domain.ProgressWeight,
		Value:      ptr(82.4),
		Unit:       "kg",
	})
	require.NoError(t, err)
	assert.Equal(t, athleteUser.Athlete.ID, record.AthleteID)
	assert.False(t, record.RecordedAt.IsZero())

	t.Run("unknown record type", func(t *testing.T) {
		_, err := svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{RecordType: "steps"})
		assert.ErrorIs(t, err, ErrInvalidProgressType)
	})

	t.Run("measurements need a value", func(t *testing.T) {
		_, err := svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{RecordType: domain.ProgressBodyFat})
		assert.ErrorIs(t, err, ErrValueRequired)
	})

	t.Run("photos need an image key", func(t *testing.T) {
		_, err := svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{RecordType: domain.ProgressPhotos})
		assert.ErrorIs(t, err, ErrImageRequired)
	})

	t.Run("no athlete profile", func(t *testing.T) {
		trainerUser, _ := env.store.seedTrainer("coach@example.com", 10)
		_, err := svc.RecordProgress(ctx, trainerUser.ID, ProgressInput{
			RecordType: domain.ProgressWeight, Value: ptr(90),
		})
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestListProgressPresignsPhotoKeys(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	svc := NewProgressService(env.progress, env.athletes, fakeFiles{}, env.log)
	ctx := context.Background()

	athleteUser, _ := env.store.seedAthlete("athlete@example.com")

	_, err := svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{
		RecordType: domain.ProgressPhotos,
		ImageKey:   "progress/1/front.jpg",
	})
	require.NoError(t, err)
	_, err = svc.RecordProgress(ctx, athleteUser.ID, ProgressInput{
		RecordType: domain.ProgressWeight,
		Value:      ptr(82.0),
	})
	require.NoError(t, err)

	records, total, err := svc.ListProgress(ctx, athleteUser.ID, repository.ProgressFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range records {
		if r.ImageKey != "" {
			assert.Contains(t, r.ImageURL, r.ImageKey)
		} else {
			assert.Empty(t, r.ImageURL)
		}
	}
}

func TestPhotoUploadURL(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	svc := NewProgressService(env.progress, env.athletes, fakeFiles{}, env.log)
	ctx := context.Background()

	athleteUser, athleteProfile := env.store.seedAthlete("athlete@example.com")

	target, err := svc.PhotoUploadURL(ctx, athleteUser.ID, "")
	require.NoError(t, err)
	assert.Contains(t, target.UploadURL, target.Key)
	assert.Greater(t, target.ExpiresIn, 0)

	// Keys are namespaced per athlete profile.
	prefix := fmt.Sprintf("progress/%d/", athleteProfile.ID)
	assert.True(t, strings.HasPrefix(target.Key, prefix))
}
