package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoach/coaching-app/internal/domain"
)

func day(offset int) time.Time {
	return time.Now().AddDate(0, 0, offset)
}

func TestComputeStreak(t *testing.T) {
	t.Parallel()
	now := time.Now()

	t.Run("no completions", func(t *testing.T) {
		assert.Equal(t, 0, ComputeStreak(nil, now))
	})

	t.Run("today only", func(t *testing.T) {
		assert.Equal(t, 1, ComputeStreak([]time.Time{day(0)}, now))
	})

	t.Run("consecutive days", func(t *testing.T) {
		dates := []time.Time{day(0), day(-1), day(-2)}
		assert.Equal(t, 3, ComputeStreak(dates, now))
	})

	t.Run("missing today breaks the streak", func(t *testing.T) {
		dates := []time.Time{day(-1), day(-2)}
		assert.Equal(t, 0, ComputeStreak(dates, now))
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		dates := []time.Time{day(0), day(-2), day(-3)}
		assert.Equal(t, 1, ComputeStreak(dates, now))
	})

	t.Run("older run without today yields zero", func(t *testing.T) {
		dates := []time.Time{day(-2), day(-3)}
		assert.Equal(t, 0, ComputeStreak(dates, now))
	})

	t.Run("multiple completions on one day count once", func(t *testing.T) {
		dates := []time.Time{day(0), day(0), day(-1)}
		assert.Equal(t, 2, ComputeStreak(dates, now))
	})
}

// newWorkoutFixture seeds a trainer with one linked athlete, one exercise
// and one single-slot template. Returns the service and the seeded ids.
func newWorkoutFixture(t *testing.T) (WorkoutService, *testEnv, *domain.User, *domain.User, *domain.WorkoutTemplate) {
	t.Helper()
	env := newTestEnv()
	svc := NewWorkoutService(env.workouts, env.exercises, env.trainers, env.athletes, env.users, env.notifier, env.mailer, env.log)

	trainerUser, trainerProfile := env.store.seedTrainer("coach@example.com", 10)
	athleteUser, athleteProfile := env.store.seedAthlete("athlete@example.com")
	athleteProfile.TrainerID = &trainerProfile.ID

	exercise, err := svc.CreateExercise(context.Background(), trainerUser.ID, ExerciseInput{
		Name:     "Back squat",
		Category: "strength",
		IsPublic: true,
	})
	require.NoError(t, err)

	template, err := svc.CreateTemplate(context.Background(), trainerUser.ID, TemplateInput{
		Name:     "Leg day",
		Category: "strength",
		IsPublic: false,
		Exercises: []TemplateExerciseInput{
			{ExerciseID: exercise.ID, Sets: 5, Reps: "5"},
		},
	})
	require.NoError(t, err)

	return svc, env, trainerUser, athleteUser, template
}

func TestCreateTemplateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	svc := NewWorkoutService(env.workouts, env.exercises, env.trainers, env.athletes, env.users, env.notifier, env.mailer, env.log)
	trainerUser, _ := env.store.seedTrainer("coach@example.com", 10)

	_, err := svc.CreateTemplate(context.Background(), trainerUser.ID, TemplateInput{Name: "Empty"})
	assert.ErrorIs(t, err, ErrTemplateEmpty)

	_, err = svc.CreateTemplate(context.Background(), trainerUser.ID, TemplateInput{
		Name:      "Ghost",
		Exercises: []TemplateExerciseInput{{ExerciseID: 999, Sets: 3}},
	})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestCreateTemplateOrdersSlotsByPosition(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	svc := NewWorkoutService(env.workouts, env.exercises, env.trainers, env.athletes, env.users, env.notifier, env.mailer, env.log)
	trainerUser, _ := env.store.seedTrainer("coach@example.com", 10)

	first, err := svc.CreateExercise(context.Background(), trainerUser.ID, ExerciseInput{Name: "Deadlift", Category: "strength"})
	require.NoError(t, err)
	second, err := svc.CreateExercise(context.Background(), trainerUser.ID, ExerciseInput{Name: "Row", Category: "strength"})
	require.NoError(t, err)

	template, err := svc.CreateTemplate(context.Background(), trainerUser.ID, TemplateInput{
		Name: "Pull day",
		Exercises: []TemplateExerciseInput{
			{ExerciseID: first.ID, Sets: 5},
			{ExerciseID: second.ID, Sets: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, template.Exercises, 2)
	assert.Equal(t, 1, template.Exercises[0].OrderIndex)
	assert.Equal(t, 2, template.Exercises[1].OrderIndex)
}

func TestAssignWorkout(t *testing.T) {
	t.Parallel()
	svc, env, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	athleteProfileID := athleteUser.Athlete.ID
	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteProfileID,
		TemplateID:       template.ID,
		ScheduledDate:    day(1),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, assignment.Status)
	assert.Equal(t, athleteProfileID, assignment.AthleteID)

	// The athlete gets an inbox notification.
	count, err := env.notifier.UnreadCount(ctx, athleteUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssignWorkoutRejectsUnmanagedAthlete(t *testing.T) {
	t.Parallel()
	svc, env, trainerUser, _, template := newWorkoutFixture(t)

	_, stranger := env.store.seedAthlete("stranger@example.com")
	_, err := svc.AssignWorkout(context.Background(), trainerUser.ID, AssignmentInput{
		AthleteProfileID: stranger.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(1),
	})
	assert.ErrorIs(t, err, ErrAthleteNotManaged)
}

func TestUpdateStatusTransitions(t *testing.T) {
	t.Parallel()
	svc, _, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(0),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, athleteUser.ID, assignment.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	// in_progress cannot go back to pending
	_, err = svc.UpdateStatus(ctx, athleteUser.ID, assignment.ID, domain.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, athleteUser.ID, assignment.ID, domain.StatusSkipped)
	require.NoError(t, err)

	// skipped is terminal
	_, err = svc.UpdateStatus(ctx, athleteUser.ID, assignment.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRejectsForeignAssignment(t *testing.T) {
	t.Parallel()
	svc, env, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(0),
	})
	require.NoError(t, err)

	otherUser, _ := env.store.seedAthlete("other@example.com")
	_, err = svc.UpdateStatus(ctx, otherUser.ID, assignment.ID, domain.StatusInProgress)
	assert.ErrorIs(t, err, ErrNotYourAssignment)
}

func TestCompleteWorkout(t *testing.T) {
	t.Parallel()
	svc, env, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(0),
	})
	require.NoError(t, err)

	exerciseID := template.Exercises[0].ExerciseID
	completed, err := svc.CompleteWorkout(ctx, athleteUser.ID, assignment.ID, CompletionInput{
		Notes: "felt strong",
		Logs: []ExerciseLogInput{
			{ExerciseID: exerciseID, SetsCompleted: 5, RepsCompleted: "5", DifficultyRating: 7},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Len(t, completed.Logs, 1)
	assert.Equal(t, "felt strong", completed.Notes)

	// Completion is terminal.
	_, err = svc.CompleteWorkout(ctx, athleteUser.ID, assignment.ID, CompletionInput{})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	_, err = svc.UpdateStatus(ctx, athleteUser.ID, assignment.ID, domain.StatusSkipped)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// The trainer is told about the completion.
	count, err := env.notifier.UnreadCount(ctx, trainerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCompleteWorkoutRejectsBadRating(t *testing.T) {
	t.Parallel()
	svc, _, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(0),
	})
	require.NoError(t, err)

	_, err = svc.CompleteWorkout(ctx, athleteUser.ID, assignment.ID, CompletionInput{
		Logs: []ExerciseLogInput{{ExerciseID: 1, DifficultyRating: 11}},
	})
	assert.ErrorIs(t, err, ErrInvalidRating)

	// An omitted rating is fine.
	_, err = svc.CompleteWorkout(ctx, athleteUser.ID, assignment.ID, CompletionInput{
		Logs: []ExerciseLogInput{{ExerciseID: 1, SetsCompleted: 3}},
	})
	assert.NoError(t, err)
}

func TestAddFeedback(t *testing.T) {
	t.Parallel()
	svc, env, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	assignment, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    day(0),
	})
	require.NoError(t, err)

	require.NoError(t, svc.AddFeedback(ctx, trainerUser.ID, assignment.ID, "watch your knee tracking"))
	stored, err := env.workouts.GetAssignmentByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, "watch your knee tracking", stored.TrainerFeedback)

	// Another trainer cannot leave feedback on this assignment.
	otherTrainer, _ := env.store.seedTrainer("other-coach@example.com", 10)
	err = svc.AddFeedback(ctx, otherTrainer.ID, assignment.ID, "nope")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	svc, _, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	scheduled := startOfWeek(time.Now()).Add(12 * time.Hour)
	a1, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    scheduled,
	})
	require.NoError(t, err)
	_, err = svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    scheduled.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.CompleteWorkout(ctx, athleteUser.ID, a1.ID, CompletionInput{})
	require.NoError(t, err)

	dash, err := svc.Dashboard(ctx, athleteUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.CompletedThisWeek)
	assert.Equal(t, int64(2), dash.ScheduledThisWeek)
	assert.Equal(t, 50.0, dash.CompletionRate)
}

func TestTrainerDashboard(t *testing.T) {
	t.Parallel()
	svc, _, trainerUser, athleteUser, template := newWorkoutFixture(t)
	ctx := context.Background()

	scheduled := startOfWeek(time.Now()).Add(12 * time.Hour)
	first, err := svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    scheduled,
	})
	require.NoError(t, err)
	_, err = svc.AssignWorkout(ctx, trainerUser.ID, AssignmentInput{
		AthleteProfileID: athleteUser.Athlete.ID,
		TemplateID:       template.ID,
		ScheduledDate:    scheduled.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.CompleteWorkout(ctx, athleteUser.ID, first.ID, CompletionInput{})
	require.NoError(t, err)

	dash, err := svc.TrainerDashboard(ctx, trainerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.AthleteCount)
	assert.Equal(t, 10, dash.MaxAthletes)
	assert.Equal(t, int64(2), dash.ScheduledThisWeek)
	assert.Equal(t, int64(1), dash.CompletedThisWeek)
	assert.Equal(t, 50.0, dash.ComplianceRate)
	require.Len(t, dash.RecentCompletions, 1)
	assert.Equal(t, first.ID, dash.RecentCompletions[0].ID)

	_, err = svc.TrainerDashboard(ctx, athleteUser.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
