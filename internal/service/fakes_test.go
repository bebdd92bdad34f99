package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

// In-memory repositories for unit tests. They implement only the semantics
// the services rely on: identity keys, duplicate and capacity rules, and
// ownership checks.

type fakeStore struct {
	mu  sync.Mutex
	seq uint

	users         map[uint]*domain.User
	trainers      map[uint]*domain.TrainerProfile
	nutritionists map[uint]*domain.NutritionistProfile
	athletes      map[uint]*domain.AthleteProfile

	exercises   map[uint]*domain.Exercise
	templates   map[uint]*domain.WorkoutTemplate
	assignments map[uint]*domain.AssignedWorkout
	logs        []domain.WorkoutLog
	completed   []time.Time

	foods    map[uint]*domain.Food
	plans    map[uint]*domain.NutritionPlan
	foodLogs []domain.FoodLog

	progress      []domain.ProgressRecord
	notifications []domain.Notification
	messages      []domain.Message

	subs     map[uint]*domain.Subscription
	resets   map[string]*domain.PasswordResetToken
	analyses []domain.FoodAnalysisRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[uint]*domain.User{},
		trainers:      map[uint]*domain.TrainerProfile{},
		nutritionists: map[uint]*domain.NutritionistProfile{},
		athletes:      map[uint]*domain.AthleteProfile{},
		exercises:     map[uint]*domain.Exercise{},
		templates:     map[uint]*domain.WorkoutTemplate{},
		assignments:   map[uint]*domain.AssignedWorkout{},
		foods:         map[uint]*domain.Food{},
		plans:         map[uint]*domain.NutritionPlan{},
		subs:          map[uint]*domain.Subscription{},
		resets:        map[string]*domain.PasswordResetToken{},
	}
}

func (s *fakeStore) nextID() uint {
	s.seq++
	return s.seq
}

// seedTrainer creates a trainer user with profile and returns both.
func (s *fakeStore) seedTrainer(email string, maxAthletes int) (*domain.User, *domain.TrainerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.nextID()
	pid := s.nextID()
	profile := &domain.TrainerProfile{ID: pid, UserID: uid, MaxAthletes: maxAthletes, SubscriptionPlan: "basic"}
	user := &domain.User{ID: uid, Email: email, Role: domain.RoleTrainer, FirstName: "Terry", LastName: "Coach", IsActive: true, Trainer: profile}
	s.users[uid] = user
	s.trainers[pid] = profile
	return user, profile
}

func (s *fakeStore) seedNutritionist(email string, maxClients int) (*domain.User, *domain.NutritionistProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.nextID()
	pid := s.nextID()
	profile := &domain.NutritionistProfile{ID: pid, UserID: uid, MaxClients: maxClients, SubscriptionPlan: "basic"}
	user := &domain.User{ID: uid, Email: email, Role: domain.RoleNutritionist, FirstName: "Nadia", LastName: "Diet", IsActive: true, Nutritionist: profile}
	s.users[uid] = user
	s.nutritionists[pid] = profile
	return user, profile
}

func (s *fakeStore) seedAthlete(email string) (*domain.User, *domain.AthleteProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.nextID()
	pid := s.nextID()
	profile := &domain.AthleteProfile{ID: pid, UserID: uid}
	user := &domain.User{ID: uid, Email: email, Role: domain.RoleAthlete, FirstName: "Alex", LastName: "Runner", IsActive: true, Athlete: profile}
	s.users[uid] = user
	s.athletes[pid] = profile
	return user, profile
}

// --- UserRepository ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return 0, repository.ErrDuplicate
		}
	}
	user.ID = r.s.nextID()
	switch {
	case user.Trainer != nil:
		user.Trainer.ID = r.s.nextID()
		user.Trainer.UserID = user.ID
		if user.Trainer.MaxAthletes == 0 {
			user.Trainer.MaxAthletes = 10
		}
		r.s.trainers[user.Trainer.ID] = user.Trainer
	case user.Athlete != nil:
		user.Athlete.ID = r.s.nextID()
		user.Athlete.UserID = user.ID
		r.s.athletes[user.Athlete.ID] = user.Athlete
	case user.Nutritionist != nil:
		user.Nutritionist.ID = r.s.nextID()
		user.Nutritionist.UserID = user.ID
		if user.Nutritionist.MaxClients == 0 {
			user.Nutritionist.MaxClients = 15
		}
		r.s.nutritionists[user.Nutritionist.ID] = user.Nutritionist
	}
	r.s.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uint, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// --- TrainerRepository ---

type fakeTrainerRepo struct{ s *fakeStore }

func (r *fakeTrainerRepo) GetByUserID(_ context.Context, userID uint) (*domain.TrainerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.trainers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrainerRepo) GetByID(_ context.Context, id uint) (*domain.TrainerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.trainers[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrainerRepo) Update(_ context.Context, profile *domain.TrainerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.trainers[profile.ID] = profile
	return nil
}

func (r *fakeTrainerRepo) AssignAthlete(_ context.Context, trainerID, athleteID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trainer, ok := r.s.trainers[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	athlete, ok := r.s.athletes[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	if athlete.TrainerID != nil && *athlete.TrainerID == trainerID {
		return repository.ErrDuplicate
	}
	if trainer.MaxAthletes != -1 {
		var count int
		for _, a := range r.s.athletes {
			if a.TrainerID != nil && *a.TrainerID == trainerID {
				count++
			}
		}
		if count >= trainer.MaxAthletes {
			return repository.ErrCapacity
		}
	}
	athlete.TrainerID = &trainerID
	return nil
}

func (r *fakeTrainerRepo) RemoveAthlete(_ context.Context, trainerID, athleteID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	athlete, ok := r.s.athletes[athleteID]
	if !ok || athlete.TrainerID == nil || *athlete.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	athlete.TrainerID = nil
	return nil
}

func (r *fakeTrainerRepo) CountAthletes(_ context.Context, trainerID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, a := range r.s.athletes {
		if a.TrainerID != nil && *a.TrainerID == trainerID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTrainerRepo) ListAthletes(_ context.Context, trainerID uint, _ repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.AthleteProfile
	for _, a := range r.s.athletes {
		if a.TrainerID != nil && *a.TrainerID == trainerID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

// --- NutritionistRepository ---

type fakeNutritionistRepo struct{ s *fakeStore }

func (r *fakeNutritionistRepo) GetByUserID(_ context.Context, userID uint) (*domain.NutritionistProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.nutritionists {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeNutritionistRepo) GetByID(_ context.Context, id uint) (*domain.NutritionistProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.nutritionists[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeNutritionistRepo) Update(_ context.Context, profile *domain.NutritionistProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nutritionists[profile.ID] = profile
	return nil
}

func (r *fakeNutritionistRepo) AssignClient(_ context.Context, nutritionistID, athleteID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	nutritionist, ok := r.s.nutritionists[nutritionistID]
	if !ok {
		return repository.ErrNotFound
	}
	athlete, ok := r.s.athletes[athleteID]
	if !ok {
		return repository.ErrNotFound
	}
	if athlete.NutritionistID != nil && *athlete.NutritionistID == nutritionistID {
		return repository.ErrDuplicate
	}
	if nutritionist.MaxClients != -1 {
		var count int
		for _, a := range r.s.athletes {
			if a.NutritionistID != nil && *a.NutritionistID == nutritionistID {
				count++
			}
		}
		if count >= nutritionist.MaxClients {
			return repository.ErrCapacity
		}
	}
	athlete.NutritionistID = &nutritionistID
	return nil
}

func (r *fakeNutritionistRepo) CountClients(_ context.Context, nutritionistID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, a := range r.s.athletes {
		if a.NutritionistID != nil && *a.NutritionistID == nutritionistID {
			count++
		}
	}
	return count, nil
}

func (r *fakeNutritionistRepo) ListClients(_ context.Context, nutritionistID uint, _ repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.AthleteProfile
	for _, a := range r.s.athletes {
		if a.NutritionistID != nil && *a.NutritionistID == nutritionistID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

// --- AthleteRepository ---

type fakeAthleteRepo struct{ s *fakeStore }

func (r *fakeAthleteRepo) GetByUserID(_ context.Context, userID uint) (*domain.AthleteProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.athletes {
		if a.UserID == userID {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAthleteRepo) GetByID(_ context.Context, id uint) (*domain.AthleteProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.athletes[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAthleteRepo) Update(_ context.Context, profile *domain.AthleteProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.athletes[profile.ID] = profile
	return nil
}

// --- ExerciseRepository ---

type fakeExerciseRepo struct{ s *fakeStore }

func (r *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercise.ID = r.s.nextID()
	r.s.exercises[exercise.ID] = exercise
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id uint) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.exercises[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) List(_ context.Context, _ repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Exercise
	for _, e := range r.s.exercises {
		out = append(out, *e)
	}
	return out, nil
}

// --- WorkoutRepository ---

type fakeWorkoutRepo struct{ s *fakeStore }

func (r *fakeWorkoutRepo) CreateTemplate(_ context.Context, template *domain.WorkoutTemplate) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	template.ID = r.s.nextID()
	for i := range template.Exercises {
		template.Exercises[i].ID = r.s.nextID()
		template.Exercises[i].TemplateID = template.ID
	}
	r.s.templates[template.ID] = template
	return template.ID, nil
}

func (r *fakeWorkoutRepo) GetTemplateByID(_ context.Context, id uint) (*domain.WorkoutTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.templates[id]; ok {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListTemplates(_ context.Context, _ repository.TemplateFilter) ([]domain.WorkoutTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.WorkoutTemplate
	for _, t := range r.s.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeWorkoutRepo) CreateAssignment(_ context.Context, assignment *domain.AssignedWorkout) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignment.ID = r.s.nextID()
	r.s.assignments[assignment.ID] = assignment
	return assignment.ID, nil
}

func (r *fakeWorkoutRepo) GetAssignmentByID(_ context.Context, id uint) (*domain.AssignedWorkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assignments[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListAssignments(_ context.Context, filter repository.AssignmentFilter) ([]domain.AssignedWorkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.AssignedWorkout
	for _, a := range r.s.assignments {
		if filter.AthleteID != nil && a.AthleteID != *filter.AthleteID {
			continue
		}
		if filter.TrainerID != nil && a.TrainerID != *filter.TrainerID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeWorkoutRepo) UpdateAssignmentStatus(_ context.Context, id uint, status domain.AssignmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeWorkoutRepo) UpdateAssignmentFeedback(_ context.Context, id uint, feedback string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.TrainerFeedback = feedback
	return nil
}

func (r *fakeWorkoutRepo) CompleteAssignment(_ context.Context, assignment *domain.AssignedWorkout, logs []domain.WorkoutLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.assignments[assignment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = assignment.Status
	stored.CompletedAt = assignment.CompletedAt
	stored.Notes = assignment.Notes
	r.s.logs = append(r.s.logs, logs...)
	if assignment.CompletedAt != nil {
		r.s.completed = append(r.s.completed, stored.ScheduledDate)
	}
	return nil
}

func (r *fakeWorkoutRepo) CompletedDates(_ context.Context, _ uint) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]time.Time(nil), r.s.completed...), nil
}

func (r *fakeWorkoutRepo) CountByStatusBetween(_ context.Context, athleteID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, a := range r.s.assignments {
		if a.AthleteID == athleteID && a.Status == status &&
			!a.ScheduledDate.Before(from) && a.ScheduledDate.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *fakeWorkoutRepo) CountScheduledBetween(_ context.Context, athleteID uint, from, to time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, a := range r.s.assignments {
		if a.AthleteID == athleteID && !a.ScheduledDate.Before(from) && a.ScheduledDate.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *fakeWorkoutRepo) CountByTrainerBetween(_ context.Context, trainerID uint, status domain.AssignmentStatus, from, to time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, a := range r.s.assignments {
		if a.TrainerID != trainerID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		if !a.ScheduledDate.Before(from) && a.ScheduledDate.Before(to) {
			count++
		}
	}
	return count, nil
}

// --- FoodRepository ---

type fakeFoodRepo struct{ s *fakeStore }

func (r *fakeFoodRepo) Create(_ context.Context, food *domain.Food) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	food.ID = r.s.nextID()
	r.s.foods[food.ID] = food
	return food.ID, nil
}

func (r *fakeFoodRepo) GetByID(_ context.Context, id uint) (*domain.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f, ok := r.s.foods[id]; ok {
		return f, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeFoodRepo) Search(_ context.Context, query string, limit int) ([]domain.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Food
	for _, f := range r.s.foods {
		if strings.Contains(strings.ToLower(f.Name), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(f.Brand), strings.ToLower(query)) {
			out = append(out, *f)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// --- NutritionRepository ---

type fakeNutritionRepo struct{ s *fakeStore }

func (r *fakeNutritionRepo) CreatePlan(_ context.Context, plan *domain.NutritionPlan) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	plan.ID = r.s.nextID()
	for i := range plan.Meals {
		plan.Meals[i].ID = r.s.nextID()
		plan.Meals[i].PlanID = plan.ID
		for j := range plan.Meals[i].Foods {
			plan.Meals[i].Foods[j].ID = r.s.nextID()
			plan.Meals[i].Foods[j].MealID = plan.Meals[i].ID
			plan.Meals[i].Foods[j].Food = r.s.foods[plan.Meals[i].Foods[j].FoodID]
		}
	}
	r.s.plans[plan.ID] = plan
	return plan.ID, nil
}

func (r *fakeNutritionRepo) GetPlanByID(_ context.Context, id uint) (*domain.NutritionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.plans[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeNutritionRepo) ListPlansByNutritionist(_ context.Context, nutritionistID uint) ([]domain.NutritionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.NutritionPlan
	for _, p := range r.s.plans {
		if p.NutritionistID == nutritionistID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeNutritionRepo) ListPlansByAthlete(_ context.Context, athleteID uint) ([]domain.NutritionPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.NutritionPlan
	for _, p := range r.s.plans {
		if p.AthleteID == athleteID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeNutritionRepo) UpdatePlanStatus(_ context.Context, id uint, status domain.PlanStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeNutritionRepo) MealFoods(_ context.Context, mealID uint) ([]domain.MealFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		for _, m := range p.Meals {
			if m.ID == mealID {
				return m.Foods, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeNutritionRepo) PlanFoods(_ context.Context, planID uint) ([]domain.MealFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[planID]
	if !ok {
		return nil, nil
	}
	var out []domain.MealFood
	for _, m := range p.Meals {
		out = append(out, m.Foods...)
	}
	return out, nil
}

func (r *fakeNutritionRepo) CreateFoodLog(_ context.Context, log *domain.FoodLog) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = r.s.nextID()
	r.s.foodLogs = append(r.s.foodLogs, *log)
	return log.ID, nil
}

func (r *fakeNutritionRepo) ListFoodLogs(_ context.Context, athleteID uint, filter repository.FoodLogFilter) ([]domain.FoodLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.FoodLog
	for _, l := range r.s.foodLogs {
		if l.AthleteID != athleteID {
			continue
		}
		if filter.DateFrom != nil && l.LoggedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && !l.LoggedAt.Before(*filter.DateTo) {
			continue
		}
		if l.Food == nil {
			l.Food = r.s.foods[l.FoodID]
		}
		out = append(out, l)
	}
	return out, nil
}

// --- ProgressRepository ---

type fakeProgressRepo struct{ s *fakeStore }

func (r *fakeProgressRepo) Create(_ context.Context, record *domain.ProgressRecord) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.ID = r.s.nextID()
	r.s.progress = append(r.s.progress, *record)
	return record.ID, nil
}

func (r *fakeProgressRepo) List(_ context.Context, athleteID uint, _ repository.ProgressFilter) ([]domain.ProgressRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ProgressRecord
	for _, p := range r.s.progress {
		if p.AthleteID == athleteID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

// --- NotificationRepository ---

type fakeNotificationRepo struct{ s *fakeStore }

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.CreatedAt = time.Now()
	r.s.notifications = append(r.s.notifications, *n)
	return n.ID, nil
}

func (r *fakeNotificationRepo) List(_ context.Context, userID uint, unreadOnly bool, _ repository.Page) ([]domain.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID != userID || n.IsDeleted {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsDeleted && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID && !n.IsDeleted {
			now := time.Now()
			r.s.notifications[i].IsRead = true
			r.s.notifications[i].ReadAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for i, n := range r.s.notifications {
		if n.UserID == userID && !n.IsDeleted && !n.IsRead {
			r.s.notifications[i].IsRead = true
			r.s.notifications[i].ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) SoftDelete(_ context.Context, id, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID && !n.IsDeleted {
			r.s.notifications[i].IsDeleted = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- MessageRepository ---

type fakeMessageRepo struct{ s *fakeStore }

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.Message) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID()
	r.s.messages = append(r.s.messages, *m)
	return m.ID, nil
}

func (r *fakeMessageRepo) ListInbox(_ context.Context, userID uint, _ repository.Page) ([]domain.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Message
	for _, m := range r.s.messages {
		if m.RecipientID == userID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) ListOutbox(_ context.Context, userID uint, _ repository.Page) ([]domain.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Message
	for _, m := range r.s.messages {
		if m.SenderID == userID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id, recipientID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.messages {
		if m.ID == id && m.RecipientID == recipientID {
			r.s.messages[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- SubscriptionRepository ---

type fakeSubscriptionRepo struct{ s *fakeStore }

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.subs {
		if existing.UserID == sub.UserID &&
			(existing.Status == domain.SubActive || existing.Status == domain.SubPaused) {
			existing.Status = domain.SubCancelled
			existing.AutoRenew = false
		}
	}
	sub.ID = r.s.nextID()
	sub.CreatedAt = time.Now()
	r.s.subs[sub.ID] = sub
	return sub.ID, nil
}

func (r *fakeSubscriptionRepo) Current(_ context.Context, userID uint) (*domain.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *domain.Subscription
	for _, sub := range r.s.subs {
		if sub.UserID != userID {
			continue
		}
		if latest == nil || sub.ID > latest.ID {
			latest = sub
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *fakeSubscriptionRepo) UpdateStatus(_ context.Context, id uint, status domain.SubscriptionStatus, autoRenew bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subs[id]
	if !ok {
		return repository.ErrNotFound
	}
	sub.Status = status
	sub.AutoRenew = autoRenew
	return nil
}

func (r *fakeSubscriptionRepo) GetByGatewayID(_ context.Context, gatewayID string) (*domain.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.GatewaySubscriptionID == gatewayID {
			return sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSubscriptionRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, sub := range r.s.subs {
		if sub.Status == domain.SubActive && now.After(sub.ExpiresAt) {
			sub.Status = domain.SubExpired
			count++
		}
	}
	return count, nil
}

// --- PasswordResetRepository ---

type fakeResetRepo struct{ s *fakeStore }

func (r *fakeResetRepo) Create(_ context.Context, token *domain.PasswordResetToken) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = r.s.nextID()
	r.s.resets[token.Token] = token
	return token.ID, nil
}

func (r *fakeResetRepo) GetValid(_ context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.resets[token]
	if !ok || t.UsedAt != nil || now.After(t.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.resets {
		if t.ID == id {
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- AnalysisRepository ---

type fakeAnalysisRepo struct{ s *fakeStore }

func (r *fakeAnalysisRepo) Create(_ context.Context, record *domain.FoodAnalysisRecord) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.ID = r.s.nextID()
	r.s.analyses = append(r.s.analyses, *record)
	return record.ID, nil
}

func (r *fakeAnalysisRepo) ListByUser(_ context.Context, userID uint, _ repository.Page) ([]domain.FoodAnalysisRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.FoodAnalysisRecord
	for _, a := range r.s.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

// --- Mailer ---

type fakeMailer struct {
	mu    sync.Mutex
	sends []string
}

func (m *fakeMailer) record(kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, kind)
	return nil
}

func (m *fakeMailer) SendWelcome(string, string, domain.Role) error { return m.record("welcome") }
func (m *fakeMailer) SendWorkoutAssigned(string, string, string, time.Time) error {
	return m.record("workout")
}
func (m *fakeMailer) SendSubscriptionEvent(string, string, domain.SubscriptionStatus, string) error {
	return m.record("subscription")
}
func (m *fakeMailer) SendPasswordReset(string, string, string) error { return m.record("reset") }
func (m *fakeMailer) SendBulk([]string, string, string) error        { return m.record("bulk") }

// --- FileStorage ---

type fakeFiles struct{}

func (fakeFiles) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/upload/" + key, nil
}

func (fakeFiles) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/download/" + key, nil
}

func (fakeFiles) DeleteObject(context.Context, string) error { return nil }

// testEnv bundles one shared fake store with every repository wrapped around
// it, plus a silenced logger and a real notification service.
type testEnv struct {
	store *fakeStore

	users         *fakeUserRepo
	trainers      *fakeTrainerRepo
	nutritionists *fakeNutritionistRepo
	athletes      *fakeAthleteRepo
	exercises     *fakeExerciseRepo
	workouts      *fakeWorkoutRepo
	foods         *fakeFoodRepo
	nutrition     *fakeNutritionRepo
	progress      *fakeProgressRepo
	notifications *fakeNotificationRepo
	messages      *fakeMessageRepo
	subs          *fakeSubscriptionRepo
	resets        *fakeResetRepo
	analyses      *fakeAnalysisRepo

	mailer   *fakeMailer
	log      *logrus.Logger
	notifier NotificationService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	env := &testEnv{
		store:         store,
		users:         &fakeUserRepo{s: store},
		trainers:      &fakeTrainerRepo{s: store},
		nutritionists: &fakeNutritionistRepo{s: store},
		athletes:      &fakeAthleteRepo{s: store},
		exercises:     &fakeExerciseRepo{s: store},
		workouts:      &fakeWorkoutRepo{s: store},
		foods:         &fakeFoodRepo{s: store},
		nutrition:     &fakeNutritionRepo{s: store},
		progress:      &fakeProgressRepo{s: store},
		notifications: &fakeNotificationRepo{s: store},
		messages:      &fakeMessageRepo{s: store},
		subs:          &fakeSubscriptionRepo{s: store},
		resets:        &fakeResetRepo{s: store},
		analyses:      &fakeAnalysisRepo{s: store},
		mailer:        &fakeMailer{},
		log:           log,
	}
	env.notifier = NewNotificationService(env.notifications, env.messages, env.users, log)
	return env
}
