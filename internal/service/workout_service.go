package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/email"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrTemplateNotFound   = errors.New("workout template not found")
	ErrTemplateEmpty      = errors.New("workout template needs at least one exercise")
	ErrAssignmentNotFound = errors.New("assigned workout not found")
	ErrNotYourAssignment  = errors.New("assigned workout belongs to another athlete")
	ErrAlreadyCompleted   = errors.New("workout is already completed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAthleteNotManaged  = errors.New("athlete is not on your roster")
	ErrInvalidRating      = errors.New("difficulty rating must be between 1 and 10")
)

// ExerciseInput describes a new exercise library entry.
type ExerciseInput struct {
	Name         string
	Category     string
	MuscleGroups string
	Equipment    string
	Instructions string
	VideoURL     string
	Difficulty   string
	IsPublic     bool
}

// TemplateExerciseInput is one slot of a new template. Order is taken from
// the slice position, not from the client.
type TemplateExerciseInput struct {
	ExerciseID      uint
	Sets            int
	Reps            string
	Weight          string
	DurationSeconds int
	RestSeconds     int
	Notes           string
}

// TemplateInput describes a new workout template.
type TemplateInput struct {
	Name            string
	Description     string
	Difficulty      string
	DurationMinutes int
	Category        string
	IsPublic        bool
	Exercises       []TemplateExerciseInput
}

// AssignmentInput schedules a template for an athlete.
type AssignmentInput struct {
	AthleteProfileID uint
	TemplateID       uint
	ScheduledDate    time.Time
	Notes            string
}

// ExerciseLogInput is one performed exercise reported at completion.
type ExerciseLogInput struct {
	ExerciseID       uint
	SetsCompleted    int
	RepsCompleted    string
	WeightUsed       string
	DurationSeconds  int
	RestSeconds      int
	DifficultyRating int
	Notes            string
}

// CompletionInput is the full completion report for an assigned workout.
type CompletionInput struct {
	Notes string
	Logs  []ExerciseLogInput
}

// TrainerDashboard summarizes the trainer's roster and how the week's
// assignments are going.
type TrainerDashboard struct {
	AthleteCount      int64                    `json:"athleteCount"`
	MaxAthletes       int                      `json:"maxAthletes"`
	ScheduledThisWeek int64                    `json:"scheduledThisWeek"`
	CompletedThisWeek int64                    `json:"completedThisWeek"`
	ComplianceRate    float64                  `json:"complianceRate"`
	RecentCompletions []domain.AssignedWorkout `json:"recentCompletions"`
}

// AthleteDashboard aggregates the athlete's home screen in one call.
type AthleteDashboard struct {
	Streak            int                      `json:"streak"`
	CompletedThisWeek int64                    `json:"completedThisWeek"`
	ScheduledThisWeek int64                    `json:"scheduledThisWeek"`
	CompletionRate    float64                  `json:"completionRate"`
	UpcomingWorkouts  []domain.AssignedWorkout `json:"upcomingWorkouts"`
	RecentWorkouts    []domain.AssignedWorkout `json:"recentWorkouts"`
}

type WorkoutService interface {
	CreateExercise(ctx context.Context, trainerUserID uint, input ExerciseInput) (*domain.Exercise, error)
	ListExercises(ctx context.Context, trainerUserID uint, filter repository.ExerciseFilter) ([]domain.Exercise, error)

	CreateTemplate(ctx context.Context, trainerUserID uint, input TemplateInput) (*domain.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, trainerUserID, templateID uint) (*domain.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, trainerUserID uint, ownedOnly bool, filter repository.TemplateFilter) ([]domain.WorkoutTemplate, error)

	AssignWorkout(ctx context.Context, trainerUserID uint, input AssignmentInput) (*domain.AssignedWorkout, error)
	TrainerAssignments(ctx context.Context, trainerUserID uint, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error)
	AthleteAssignments(ctx context.Context, athleteUserID uint, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error)

	UpdateStatus(ctx context.Context, athleteUserID, assignmentID uint, status domain.AssignmentStatus) (*domain.AssignedWorkout, error)
	CompleteWorkout(ctx context.Context, athleteUserID, assignmentID uint, input CompletionInput) (*domain.AssignedWorkout, error)
	AddFeedback(ctx context.Context, trainerUserID, assignmentID uint, feedback string) error

	Dashboard(ctx context.Context, athleteUserID uint) (*AthleteDashboard, error)
	TrainerDashboard(ctx context.Context, trainerUserID uint) (*TrainerDashboard, error)
}

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	trainerRepo  repository.TrainerRepository
	athleteRepo  repository.AthleteRepository
	userRepo     repository.UserRepository
	notifier     NotificationService
	mailer       email.Mailer
	log          *logrus.Logger
}

func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	trainerRepo repository.TrainerRepository,
	athleteRepo repository.AthleteRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	mailer email.Mailer,
	log *logrus.Logger,
) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		trainerRepo:  trainerRepo,
		athleteRepo:  athleteRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		mailer:       mailer,
		log:          log,
	}
}

func (s *workoutService) CreateExercise(ctx context.Context, trainerUserID uint, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" || input.Category == "" {
		return nil, errors.New("exercise name and category cannot be empty")
	}
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}
	exercise := &domain.Exercise{
		Name:         input.Name,
		Category:     input.Category,
		MuscleGroups: input.MuscleGroups,
		Equipment:    input.Equipment,
		Instructions: input.Instructions,
		VideoURL:     input.VideoURL,
		Difficulty:   input.Difficulty,
		CreatedBy:    &trainer.ID,
		IsPublic:     input.IsPublic,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

func (s *workoutService) ListExercises(ctx context.Context, trainerUserID uint, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	if trainerUserID != 0 {
		trainer, err := s.trainerProfile(ctx, trainerUserID)
		if err != nil {
			return nil, err
		}
		filter.OwnerID = &trainer.ID
	}
	return s.exerciseRepo.List(ctx, filter)
}

// CreateTemplate persists the template with its exercise slots ordered by
// their position in the request.
func (s *workoutService) CreateTemplate(ctx context.Context, trainerUserID uint, input TemplateInput) (*domain.WorkoutTemplate, error) {
	if input.Name == "" {
		return nil, errors.New("template name cannot be empty")
	}
	if len(input.Exercises) == 0 {
		return nil, ErrTemplateEmpty
	}
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}

	template := &domain.WorkoutTemplate{
		TrainerID:       trainer.ID,
		Name:            input.Name,
		Description:     input.Description,
		Difficulty:      input.Difficulty,
		DurationMinutes: input.DurationMinutes,
		Category:        input.Category,
		IsPublic:        input.IsPublic,
	}
	for i, slot := range input.Exercises {
		if _, err := s.exerciseRepo.GetByID(ctx, slot.ExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrExerciseNotFound, slot.ExerciseID)
			}
			return nil, err
		}
		template.Exercises = append(template.Exercises, domain.WorkoutTemplateExercise{
			ExerciseID:      slot.ExerciseID,
			Sets:            slot.Sets,
			Reps:            slot.Reps,
			Weight:          slot.Weight,
			DurationSeconds: slot.DurationSeconds,
			RestSeconds:     slot.RestSeconds,
			OrderIndex:      i + 1,
			Notes:           slot.Notes,
		})
	}

	id, err := s.workoutRepo.CreateTemplate(ctx, template)
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.GetTemplateByID(ctx, id)
}

func (s *workoutService) GetTemplate(ctx context.Context, trainerUserID, templateID uint) (*domain.WorkoutTemplate, error) {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}
	template, err := s.workoutRepo.GetTemplateByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !template.IsPublic && template.TrainerID != trainer.ID {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (s *workoutService) ListTemplates(ctx context.Context, trainerUserID uint, ownedOnly bool, filter repository.TemplateFilter) ([]domain.WorkoutTemplate, error) {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}
	filter.OwnerID = &trainer.ID
	filter.OwnerOnly = ownedOnly
	return s.workoutRepo.ListTemplates(ctx, filter)
}

// AssignWorkout schedules a template for a roster athlete. The athlete and
// trainer ids are captured on the assignment as of now; a later roster
// change does not touch existing assignments.
func (s *workoutService) AssignWorkout(ctx context.Context, trainerUserID uint, input AssignmentInput) (*domain.AssignedWorkout, error) {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}

	athlete, err := s.athleteRepo.GetByID(ctx, input.AthleteProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if athlete.TrainerID == nil || *athlete.TrainerID != trainer.ID {
		return nil, ErrAthleteNotManaged
	}

	template, err := s.workoutRepo.GetTemplateByID(ctx, input.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !template.IsPublic && template.TrainerID != trainer.ID {
		return nil, ErrTemplateNotFound
	}

	assignment := &domain.AssignedWorkout{
		AthleteID:     athlete.ID,
		TrainerID:     trainer.ID,
		TemplateID:    template.ID,
		AssignedDate:  time.Now(),
		ScheduledDate: input.ScheduledDate,
		Status:        domain.StatusPending,
		Notes:         input.Notes,
	}
	id, err := s.workoutRepo.CreateAssignment(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	assignment.Template = template

	if athleteUser, uerr := s.userRepo.GetByID(ctx, athlete.UserID); uerr == nil {
		s.notifier.Notify(ctx, NotifyInput{
			UserID:   athleteUser.ID,
			Title:    "New workout assigned",
			Message:  fmt.Sprintf("%s is scheduled for %s.", template.Name, input.ScheduledDate.Format("02 Jan 2006")),
			Type:     domain.NotifyWorkout,
			Priority: domain.PriorityMedium,
		})
		go func() {
			if mailErr := s.mailer.SendWorkoutAssigned(athleteUser.Email, athleteUser.FullName(), template.Name, input.ScheduledDate); mailErr != nil {
				s.log.WithError(mailErr).WithField("athleteUserId", athleteUser.ID).Warn("workout assignment email failed")
			}
		}()
	}

	return assignment, nil
}

func (s *workoutService) TrainerAssignments(ctx context.Context, trainerUserID uint, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error) {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}
	filter.TrainerID = &trainer.ID
	return s.workoutRepo.ListAssignments(ctx, filter)
}

func (s *workoutService) AthleteAssignments(ctx context.Context, athleteUserID uint, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error) {
	athlete, err := s.athleteProfile(ctx, athleteUserID)
	if err != nil {
		return nil, err
	}
	filter.AthleteID = &athlete.ID
	return s.workoutRepo.ListAssignments(ctx, filter)
}

// UpdateStatus moves the assignment through its lifecycle. Completion with
// logs goes through CompleteWorkout; this path only flips the status.
func (s *workoutService) UpdateStatus(ctx context.Context, athleteUserID, assignmentID uint, status domain.AssignmentStatus) (*domain.AssignedWorkout, error) {
	assignment, err := s.ownedAssignment(ctx, athleteUserID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == domain.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	if !assignment.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}
	if err := s.workoutRepo.UpdateAssignmentStatus(ctx, assignment.ID, status); err != nil {
		return nil, err
	}
	assignment.Status = status
	return assignment, nil
}

// CompleteWorkout marks the assignment completed and records the exercise
// logs. Both writes land in one transaction; a failed log insert rolls the
// status flip back.
func (s *workoutService) CompleteWorkout(ctx context.Context, athleteUserID, assignmentID uint, input CompletionInput) (*domain.AssignedWorkout, error) {
	assignment, err := s.ownedAssignment(ctx, athleteUserID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == domain.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	if !assignment.Status.CanTransitionTo(domain.StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	logs := make([]domain.WorkoutLog, 0, len(input.Logs))
	for _, l := range input.Logs {
		if l.DifficultyRating != 0 && (l.DifficultyRating < 1 || l.DifficultyRating > 10) {
			return nil, ErrInvalidRating
		}
		logs = append(logs, domain.WorkoutLog{
			AssignedWorkoutID: assignment.ID,
			ExerciseID:        l.ExerciseID,
			SetsCompleted:     l.SetsCompleted,
			RepsCompleted:     l.RepsCompleted,
			WeightUsed:        l.WeightUsed,
			DurationSeconds:   l.DurationSeconds,
			RestSeconds:       l.RestSeconds,
			DifficultyRating:  l.DifficultyRating,
			Notes:             l.Notes,
			CompletedAt:       now,
		})
	}

	assignment.Status = domain.StatusCompleted
	assignment.CompletedAt = &now
	if input.Notes != "" {
		assignment.Notes = input.Notes
	}
	if err := s.workoutRepo.CompleteAssignment(ctx, assignment, logs); err != nil {
		return nil, err
	}
	assignment.Logs = logs

	if trainer, terr := s.trainerRepo.GetByID(ctx, assignment.TrainerID); terr == nil {
		athleteUser, uerr := s.userRepo.GetByID(ctx, athleteUserID)
		if uerr == nil {
			s.notifier.Notify(ctx, NotifyInput{
				UserID:   trainer.UserID,
				Title:    "Workout completed",
				Message:  athleteUser.FullName() + " finished an assigned workout.",
				Type:     domain.NotifyProgress,
				Priority: domain.PriorityLow,
				SenderID: &athleteUser.ID,
			})
		}
	}

	return assignment, nil
}

func (s *workoutService) AddFeedback(ctx context.Context, trainerUserID, assignmentID uint, feedback string) error {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return err
	}
	assignment, err := s.workoutRepo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if assignment.TrainerID != trainer.ID {
		return ErrAssignmentNotFound
	}
	return s.workoutRepo.UpdateAssignmentFeedback(ctx, assignment.ID, feedback)
}

// Dashboard aggregates the athlete's week and streak.
func (s *workoutService) Dashboard(ctx context.Context, athleteUserID uint) (*AthleteDashboard, error) {
	athlete, err := s.athleteProfile(ctx, athleteUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	completed, err := s.workoutRepo.CountByStatusBetween(ctx, athlete.ID, domain.StatusCompleted, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.workoutRepo.CountScheduledBetween(ctx, athlete.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	dates, err := s.workoutRepo.CompletedDates(ctx, athlete.ID)
	if err != nil {
		return nil, err
	}

	pending := domain.StatusPending
	upcoming, err := s.workoutRepo.ListAssignments(ctx, repository.AssignmentFilter{
		AthleteID: &athlete.ID,
		Status:    pending,
		DateFrom:  &now,
		Page:      repository.Page{Number: 1, Limit: 5},
	})
	if err != nil {
		return nil, err
	}
	recent, err := s.workoutRepo.ListAssignments(ctx, repository.AssignmentFilter{
		AthleteID: &athlete.ID,
		Status:    domain.StatusCompleted,
		Page:      repository.Page{Number: 1, Limit: 5},
	})
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if scheduled > 0 {
		rate = math.Round(float64(completed)/float64(scheduled)*10000) / 100
	}

	return &AthleteDashboard{
		Streak:            ComputeStreak(dates, now),
		CompletedThisWeek: completed,
		ScheduledThisWeek: scheduled,
		CompletionRate:    rate,
		UpcomingWorkouts:  upcoming,
		RecentWorkouts:    recent,
	}, nil
}

func (s *workoutService) TrainerDashboard(ctx context.Context, trainerUserID uint) (*TrainerDashboard, error) {
	trainer, err := s.trainerProfile(ctx, trainerUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	athleteCount, err := s.trainerRepo.CountAthletes(ctx, trainer.ID)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.workoutRepo.CountByTrainerBetween(ctx, trainer.ID, "", weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	completed, err := s.workoutRepo.CountByTrainerBetween(ctx, trainer.ID, domain.StatusCompleted, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	recent, err := s.workoutRepo.ListAssignments(ctx, repository.AssignmentFilter{
		TrainerID: &trainer.ID,
		Status:    domain.StatusCompleted,
		Page:      repository.Page{Number: 1, Limit: 5},
	})
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if scheduled > 0 {
		rate = math.Round(float64(completed)/float64(scheduled)*10000) / 100
	}

	return &TrainerDashboard{
		AthleteCount:      athleteCount,
		MaxAthletes:       trainer.MaxAthletes,
		ScheduledThisWeek: scheduled,
		CompletedThisWeek: completed,
		ComplianceRate:    rate,
		RecentCompletions: recent,
	}, nil
}

// ComputeStreak counts consecutive calendar days with at least one completed
// workout, walking backwards from today and stopping at the first gap. A day
// with several completions counts once; nothing completed today means a
// streak of zero.
func ComputeStreak(completedDates []time.Time, now time.Time) int {
	days := make(map[string]bool, len(completedDates))
	for _, d := range completedDates {
		days[d.Format("2006-01-02")] = true
	}

	streak := 0
	cursor := now
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// startOfWeek returns midnight on the Monday of now's week.
func startOfWeek(now time.Time) time.Time {
	day := now
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, -1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

func (s *workoutService) trainerProfile(ctx context.Context, userID uint) (*domain.TrainerProfile, error) {
	trainer, err := s.trainerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return trainer, nil
}

func (s *workoutService) athleteProfile(ctx context.Context, userID uint) (*domain.AthleteProfile, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return athlete, nil
}

func (s *workoutService) ownedAssignment(ctx context.Context, athleteUserID, assignmentID uint) (*domain.AssignedWorkout, error) {
	athlete, err := s.athleteProfile(ctx, athleteUserID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.workoutRepo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.AthleteID != athlete.ID {
		return nil, ErrNotYourAssignment
	}
	return assignment, nil
}
