package postgres

import (
	"context"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
)

// gormExerciseRepository implements repository.ExerciseRepository.
type gormExerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository creates a new exercise repository bound to db.
func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &gormExerciseRepository{db: db}
}

func (r *gormExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (uint, error) {
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return 0, err
	}
	return exercise.ID, nil
}

func (r *gormExerciseRepository) GetByID(ctx context.Context, id uint) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &exercise, nil
}

func (r *gormExerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	query := r.db.WithContext(ctx).Model(&domain.Exercise{})

	// Public exercises are visible to everyone; private ones only to their
	// owning trainer.
	if filter.OwnerID != nil {
		query = query.Where("is_public = ? OR created_by = ?", true, *filter.OwnerID)
	} else {
		query = query.Where("is_public = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var exercises []domain.Exercise
	if err := query.Order("name ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

// gormWorkoutRepository implements repository.WorkoutRepository.
type gormWorkoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository creates a new workout repository bound to db.
func NewWorkoutRepository(db *gorm.DB) repository.WorkoutRepository {
	return &gormWorkoutRepository{db: db}
}

// CreateTemplate stores the template with its exercise rows in one
// transaction so a partial write cannot survive a failure.
func (r *gormWorkoutRepository) CreateTemplate(ctx context.Context, template *domain.WorkoutTemplate) (uint, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(template).Error
	})
	if err != nil {
		return 0, err
	}
	return template.ID, nil
}

func (r *gormWorkoutRepository) GetTemplateByID(ctx context.Context, id uint) (*domain.WorkoutTemplate, error) {
	var template domain.WorkoutTemplate
	err := r.db.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Exercises.Exercise").
		First(&template, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &template, nil
}

func (r *gormWorkoutRepository) ListTemplates(ctx context.Context, filter repository.TemplateFilter) ([]domain.WorkoutTemplate, error) {
	query := r.db.WithContext(ctx).Model(&domain.WorkoutTemplate{})

	switch {
	case filter.OwnerID != nil && filter.OwnerOnly:
		query = query.Where("trainer_id = ?", *filter.OwnerID)
	case filter.OwnerID != nil:
		query = query.Where("is_public = ? OR trainer_id = ?", true, *filter.OwnerID)
	default:
		query = query.Where("is_public = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var templates []domain.WorkoutTemplate
	err := query.Order("created_at DESC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *gormWorkoutRepository) CreateAssignment(ctx context.Context, assignment *domain.AssignedWorkout) (uint, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return 0, err
	}
	return assignment.ID, nil
}

func (r *gormWorkoutRepository) GetAssignmentByID(ctx context.Context, id uint) (*domain.AssignedWorkout, error) {
	var assignment domain.AssignedWorkout
	err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Logs").
		First(&assignment, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

func (r *gormWorkoutRepository) ListAssignments(ctx context.Context, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error) {
	query := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{})

	if filter.AthleteID != nil {
		query = query.Where("athlete_id = ?", *filter.AthleteID)
	}
	if filter.TrainerID != nil {
		query = query.Where("trainer_id = ?", *filter.TrainerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("scheduled_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("scheduled_date <= ?", *filter.DateTo)
	}

	limit := filter.Page.Limit
	if limit <= 0 {
		limit = 20
	}

	var assignments []domain.AssignedWorkout
	err := query.
		Preload("Template").
		Order("scheduled_date DESC").
		Limit(limit).
		Offset(filter.Page.Offset()).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *gormWorkoutRepository) UpdateAssignmentStatus(ctx context.Context, id uint, status domain.AssignmentStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormWorkoutRepository) UpdateAssignmentFeedback(ctx context.Context, id uint, feedback string) error {
	result := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("id = ?", id).
		Update("trainer_feedback", feedback)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CompleteAssignment persists the completed assignment and its exercise
// logs in one transaction; a failed log insert rolls the completion back.
func (r *gormWorkoutRepository) CompleteAssignment(ctx context.Context, assignment *domain.AssignedWorkout, logs []domain.WorkoutLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.AssignedWorkout{}).
			Where("id = ?", assignment.ID).
			Updates(map[string]any{
				"status":       assignment.Status,
				"completed_at": assignment.CompletedAt,
				"notes":        assignment.Notes,
			}).Error
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			return nil
		}
		return tx.Create(&logs).Error
	})
}

// CompletedDates returns scheduled dates of completed assignments, newest
// first, truncated to calendar days by the service layer.
func (r *gormWorkoutRepository) CompletedDates(ctx context.Context, athleteID uint) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("athlete_id = ? AND status = ?", athleteID, domain.StatusCompleted).
		Order("scheduled_date DESC").
		Pluck("scheduled_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *gormWorkoutRepository) CountByStatusBetween(ctx context.Context, athleteID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("athlete_id = ? AND status = ? AND scheduled_date BETWEEN ? AND ?", athleteID, status, from, to).
		Count(&count).Error
	return count, err
}

func (r *gormWorkoutRepository) CountScheduledBetween(ctx context.Context, athleteID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("athlete_id = ? AND scheduled_date BETWEEN ? AND ?", athleteID, from, to).
		Count(&count).Error
	return count, err
}

func (r *gormWorkoutRepository) CountByTrainerBetween(ctx context.Context, trainerID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.AssignedWorkout{}).
		Where("trainer_id = ? AND scheduled_date BETWEEN ? AND ?", trainerID, from, to)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
