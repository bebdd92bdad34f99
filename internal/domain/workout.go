package domain

import (
	"time"
)

// Difficulty levels shared by exercises and workout templates.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Exercise is a single entry in the exercise library. Reference data:
// append-mostly, optionally owned by the trainer who created it.
type Exercise struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Category     string    `gorm:"not null;index" json:"category"`
	MuscleGroups string    `json:"muscleGroups,omitempty"`
	Equipment    string    `json:"equipment,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Difficulty   string    `json:"difficulty,omitempty"`
	CreatedBy    *uint     `gorm:"index" json:"createdBy,omitempty"` // TrainerProfile.ID
	IsPublic     bool      `gorm:"default:true" json:"isPublic"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WorkoutTemplate is a trainer-authored, reusable ordered list of exercises
// with prescribed sets/reps/rest.
type WorkoutTemplate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TrainerID       uint      `gorm:"not null;index" json:"trainerId"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `json:"description,omitempty"`
	Difficulty      string    `json:"difficulty,omitempty"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Category        string    `gorm:"index" json:"category,omitempty"`
	IsPublic        bool      `gorm:"default:false" json:"isPublic"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Exercises are ordered by OrderIndex, dense from 1.
	Exercises []WorkoutTemplateExercise `gorm:"foreignKey:TemplateID" json:"exercises,omitempty"`
}

// WorkoutTemplateExercise is one ordered slot in a template. OrderIndex is
// unique within the template and forms a dense 1..N sequence at write time.
type WorkoutTemplateExercise struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	TemplateID      uint   `gorm:"not null;index" json:"templateId"`
	ExerciseID      uint   `gorm:"not null" json:"exerciseId"`
	Sets            int    `json:"sets,omitempty"`
	Reps            string `json:"reps,omitempty"`
	Weight          string `json:"weight,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	RestSeconds     int    `json:"restSeconds,omitempty"`
	OrderIndex      int    `gorm:"not null" json:"orderIndex"`
	Notes           string `json:"notes,omitempty"`

	Exercise *Exercise `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
}

// AssignmentStatus is the lifecycle state of an assigned workout.
// Transitions only move forward: pending -> {in_progress, completed, skipped};
// completed is terminal.
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusSkipped    AssignmentStatus = "skipped"
)

// CanTransitionTo reports whether moving from s to next is a forward
// transition under the assignment state machine.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCompleted || next == StatusSkipped
	case StatusInProgress:
		return next == StatusCompleted || next == StatusSkipped
	}
	// completed and skipped are terminal
	return false
}

// AssignedWorkout is a scheduled, stateful instance of a template given to
// one athlete for one date. Athlete and trainer are captured at assignment
// time and not re-validated if the relationship later changes.
type AssignedWorkout struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	AthleteID       uint             `gorm:"not null;index" json:"athleteId"`
	TrainerID       uint             `gorm:"not null;index" json:"trainerId"`
	TemplateID      uint             `gorm:"not null" json:"templateId"`
	AssignedDate    time.Time        `gorm:"not null" json:"assignedDate"`
	ScheduledDate   time.Time        `gorm:"index" json:"scheduledDate"`
	Status          AssignmentStatus `gorm:"default:pending" json:"status"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	TrainerFeedback string           `json:"trainerFeedback,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`

	Template *WorkoutTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Logs     []WorkoutLog     `gorm:"foreignKey:AssignedWorkoutID" json:"logs,omitempty"`
}

// WorkoutLog records one exercise actually performed during a completed
// workout.
type WorkoutLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AssignedWorkoutID uint      `gorm:"not null;index" json:"assignedWorkoutId"`
	ExerciseID        uint      `gorm:"not null" json:"exerciseId"`
	SetsCompleted     int       `json:"setsCompleted,omitempty"`
	RepsCompleted     string    `json:"repsCompleted,omitempty"`
	WeightUsed        string    `json:"weightUsed,omitempty"`
	DurationSeconds   int       `json:"durationSeconds,omitempty"`
	RestSeconds       int       `json:"restSeconds,omitempty"`
	DifficultyRating  int       `json:"difficultyRating,omitempty"` // 1..10
	Notes             string    `json:"notes,omitempty"`
	CompletedAt       time.Time `json:"completedAt"`
}
