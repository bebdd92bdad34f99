package repository

import (
	"context"
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// Error constants for the repository layer. Services translate these into
// their own error vocabulary.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate")
	ErrCapacity  = RepositoryError("capacity exceeded")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Page carries offset pagination parameters. Zero values mean page 1 with
// the caller's default limit.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit
}

// UserRepository persists base identities. Create stores the user together
// with its role profile association in a single transaction.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (uint, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

// AthleteFilter narrows athlete listings for a trainer or nutritionist.
type AthleteFilter struct {
	Search string // substring match on name or email
	Page   Page
}

// TrainerRepository persists trainer profiles and the trainer side of the
// coaching relationship.
type TrainerRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*domain.TrainerProfile, error)
	GetByID(ctx context.Context, id uint) (*domain.TrainerProfile, error)
	Update(ctx context.Context, profile *domain.TrainerProfile) error

	// AssignAthlete links the athlete to the trainer. The capacity check
	// (count vs MaxAthletes) runs against a locked trainer row inside one
	// transaction so concurrent assignments cannot overshoot the cap.
	// Returns ErrCapacity at the cap, ErrDuplicate when already linked to
	// this trainer.
	AssignAthlete(ctx context.Context, trainerID, athleteID uint) error
	RemoveAthlete(ctx context.Context, trainerID, athleteID uint) error
	CountAthletes(ctx context.Context, trainerID uint) (int64, error)
	ListAthletes(ctx context.Context, trainerID uint, filter AthleteFilter) ([]domain.AthleteProfile, int64, error)
}

// NutritionistRepository mirrors TrainerRepository for nutritionists.
type NutritionistRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*domain.NutritionistProfile, error)
	GetByID(ctx context.Context, id uint) (*domain.NutritionistProfile, error)
	Update(ctx context.Context, profile *domain.NutritionistProfile) error

	// AssignClient carries the same locked capacity semantics as
	// TrainerRepository.AssignAthlete, checked against MaxClients.
	AssignClient(ctx context.Context, nutritionistID, athleteID uint) error
	CountClients(ctx context.Context, nutritionistID uint) (int64, error)
	ListClients(ctx context.Context, nutritionistID uint, filter AthleteFilter) ([]domain.AthleteProfile, int64, error)
}

// AthleteRepository persists athlete profiles.
type AthleteRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*domain.AthleteProfile, error)
	GetByID(ctx context.Context, id uint) (*domain.AthleteProfile, error)
	Update(ctx context.Context, profile *domain.AthleteProfile) error
}

// ExerciseFilter narrows exercise library listings.
type ExerciseFilter struct {
	Category   string
	Difficulty string
	Search     string
	// OwnerID restricts private exercises to their owning trainer; public
	// exercises are always visible.
	OwnerID *uint
}

// ExerciseRepository persists the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
}

// TemplateFilter narrows workout template listings.
type TemplateFilter struct {
	Category   string
	Difficulty string
	// OwnerID makes the owner's private templates visible alongside public
	// ones; OwnerOnly drops the public ones.
	OwnerID   *uint
	OwnerOnly bool
}

// AssignmentFilter narrows assigned workout listings.
type AssignmentFilter struct {
	AthleteID *uint
	TrainerID *uint
	Status    domain.AssignmentStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      Page
}

// WorkoutRepository persists templates, assignments and completion logs.
type WorkoutRepository interface {
	// CreateTemplate stores the template and its ordered exercise rows in
	// one transaction; a partial write must not survive.
	CreateTemplate(ctx context.Context, template *domain.WorkoutTemplate) (uint, error)
	GetTemplateByID(ctx context.Context, id uint) (*domain.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]domain.WorkoutTemplate, error)

	CreateAssignment(ctx context.Context, assignment *domain.AssignedWorkout) (uint, error)
	GetAssignmentByID(ctx context.Context, id uint) (*domain.AssignedWorkout, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.AssignedWorkout, error)
	UpdateAssignmentStatus(ctx context.Context, id uint, status domain.AssignmentStatus) error
	UpdateAssignmentFeedback(ctx context.Context, id uint, feedback string) error

	// CompleteAssignment flips the assignment to completed and inserts the
	// exercise logs in one transaction.
	CompleteAssignment(ctx context.Context, assignment *domain.AssignedWorkout, logs []domain.WorkoutLog) error

	// CompletedDates returns the scheduled dates of the athlete's completed
	// assignments, newest first. Input to the streak computation.
	CompletedDates(ctx context.Context, athleteID uint) ([]time.Time, error)
	CountByStatusBetween(ctx context.Context, athleteID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error)
	CountScheduledBetween(ctx context.Context, athleteID uint, from, to time.Time) (int64, error)

	// CountByTrainerBetween counts the trainer's assignments scheduled in
	// [from, to]. An empty status matches any status.
	CountByTrainerBetween(ctx context.Context, trainerID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error)
}

// FoodRepository persists the food reference database.
type FoodRepository interface {
	Create(ctx context.Context, food *domain.Food) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Food, error)
	// Search matches the query as a case-insensitive substring of name or
	// brand, ranking verified foods first, then name ascending.
	Search(ctx context.Context, query string, limit int) ([]domain.Food, error)
}

// FoodLogFilter narrows intake listings.
type FoodLogFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     Page
}

// NutritionRepository persists plans, meals, meal foods and intake logs.
type NutritionRepository interface {
	// CreatePlan stores the plan, its ordered meals and their foods in one
	// transaction.
	CreatePlan(ctx context.Context, plan *domain.NutritionPlan) (uint, error)
	GetPlanByID(ctx context.Context, id uint) (*domain.NutritionPlan, error)
	ListPlansByNutritionist(ctx context.Context, nutritionistID uint) ([]domain.NutritionPlan, error)
	ListPlansByAthlete(ctx context.Context, athleteID uint) ([]domain.NutritionPlan, error)
	UpdatePlanStatus(ctx context.Context, id uint, status domain.PlanStatus) error

	// MealFoods and PlanFoods return portions with the Food preloaded, the
	// input to totals aggregation.
	MealFoods(ctx context.Context, mealID uint) ([]domain.MealFood, error)
	PlanFoods(ctx context.Context, planID uint) ([]domain.MealFood, error)

	CreateFoodLog(ctx context.Context, log *domain.FoodLog) (uint, error)
	ListFoodLogs(ctx context.Context, athleteID uint, filter FoodLogFilter) ([]domain.FoodLog, error)
}

// ProgressFilter narrows progress listings.
type ProgressFilter struct {
	RecordType domain.ProgressType
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       Page
}

// ProgressRepository persists the append-only progress ledger.
type ProgressRepository interface {
	Create(ctx context.Context, record *domain.ProgressRecord) (uint, error)
	List(ctx context.Context, athleteID uint, filter ProgressFilter) ([]domain.ProgressRecord, int64, error)
}

// NotificationRepository persists the notification inbox. Every read path
// excludes soft-deleted rows.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (uint, error)
	List(ctx context.Context, userID uint, unreadOnly bool, page Page) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	// MarkRead and MarkAllRead are idempotent and only touch rows owned by
	// userID.
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	SoftDelete(ctx context.Context, id, userID uint) error
}

// MessageRepository persists direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (uint, error)
	ListInbox(ctx context.Context, userID uint, page Page) ([]domain.Message, int64, error)
	ListOutbox(ctx context.Context, userID uint, page Page) ([]domain.Message, int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
}

// SubscriptionRepository persists billing periods.
type SubscriptionRepository interface {
	// Create cancels any active or paused subscription of the user and
	// inserts the new row in one transaction.
	Create(ctx context.Context, sub *domain.Subscription) (uint, error)
	Current(ctx context.Context, userID uint) (*domain.Subscription, error)
	UpdateStatus(ctx context.Context, id uint, status domain.SubscriptionStatus, autoRenew bool) error
	GetByGatewayID(ctx context.Context, gatewayID string) (*domain.Subscription, error)
	// ExpireOverdue flips still-active rows whose expiry has passed and
	// returns how many were touched. Called by the background sweep.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetRepository persists single-use reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) (uint, error)
	// GetValid returns the token only when it is unused and unexpired.
	GetValid(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uint) error
}

// AnalysisRepository persists food analysis history.
type AnalysisRepository interface {
	Create(ctx context.Context, record *domain.FoodAnalysisRecord) (uint, error)
	ListByUser(ctx context.Context, userID uint, page Page) ([]domain.FoodAnalysisRecord, int64, error)
}
