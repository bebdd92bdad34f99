package postgres

import (
	"context"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTrainerRepository implements repository.TrainerRepository on Postgres.
type gormTrainerRepository struct {
	db *gorm.DB
}

// NewTrainerRepository creates a new trainer repository bound to db.
func NewTrainerRepository(db *gorm.DB) repository.TrainerRepository {
	return &gormTrainerRepository{db: db}
}

func (r *gormTrainerRepository) GetByUserID(ctx context.Context, userID uint) (*domain.TrainerProfile, error) {
	var profile domain.TrainerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormTrainerRepository) GetByID(ctx context.Context, id uint) (*domain.TrainerProfile, error) {
	var profile domain.TrainerProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormTrainerRepository) Update(ctx context.Context, profile *domain.TrainerProfile) error {
	result := r.db.WithContext(ctx).Save(profile)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// AssignAthlete links the athlete to the trainer with the capacity check
// and the link update in one transaction. The trainer row is locked FOR
// UPDATE first, so two concurrent assignments at the cap serialize and the
// second one observes the first one's count.
func (r *gormTrainerRepository) AssignAthlete(ctx context.Context, trainerID, athleteID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trainer domain.TrainerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&trainer, trainerID).Error; err != nil {
			return translateError(err)
		}

		var athlete domain.AthleteProfile
		if err := tx.First(&athlete, athleteID).Error; err != nil {
			return translateError(err)
		}
		if athlete.TrainerID != nil && *athlete.TrainerID == trainerID {
			return repository.ErrDuplicate
		}

		if trainer.MaxAthletes != -1 {
			var count int64
			if err := tx.Model(&domain.AthleteProfile{}).
				Where("trainer_id = ?", trainerID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(trainer.MaxAthletes) {
				return repository.ErrCapacity
			}
		}

		return tx.Model(&domain.AthleteProfile{}).
			Where("id = ?", athleteID).
			Update("trainer_id", trainerID).Error
	})
}

func (r *gormTrainerRepository) RemoveAthlete(ctx context.Context, trainerID, athleteID uint) error {
	result := r.db.WithContext(ctx).Model(&domain.AthleteProfile{}).
		Where("id = ? AND trainer_id = ?", athleteID, trainerID).
		Update("trainer_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormTrainerRepository) CountAthletes(ctx context.Context, trainerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AthleteProfile{}).
		Where("trainer_id = ?", trainerID).
		Count(&count).Error
	return count, err
}

func (r *gormTrainerRepository) ListAthletes(ctx context.Context, trainerID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	return listAthletesLinkedTo(ctx, r.db, "trainer_id", trainerID, filter)
}

// listAthletesLinkedTo lists athlete profiles linked through the given
// column (trainer_id or nutritionist_id), joined with users for search and
// stable name ordering. Shared by both relationship sides.
func listAthletesLinkedTo(ctx context.Context, db *gorm.DB, column string, ownerID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	query := db.WithContext(ctx).Model(&domain.AthleteProfile{}).
		Joins("JOIN users ON users.id = athlete_profiles.user_id").
		Where("athlete_profiles."+column+" = ?", ownerID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Page.Limit
	if limit <= 0 {
		limit = 20
	}

	var athletes []domain.AthleteProfile
	err := query.
		Preload("User").
		Order("users.first_name ASC, users.last_name ASC").
		Limit(limit).
		Offset(filter.Page.Offset()).
		Find(&athletes).Error
	if err != nil {
		return nil, 0, err
	}
	return athletes, total, nil
}

// gormNutritionistRepository implements repository.NutritionistRepository.
type gormNutritionistRepository struct {
	db *gorm.DB
}

// NewNutritionistRepository creates a new nutritionist repository bound to db.
func NewNutritionistRepository(db *gorm.DB) repository.NutritionistRepository {
	return &gormNutritionistRepository{db: db}
}

func (r *gormNutritionistRepository) GetByUserID(ctx context.Context, userID uint) (*domain.NutritionistProfile, error) {
	var profile domain.NutritionistProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormNutritionistRepository) GetByID(ctx context.Context, id uint) (*domain.NutritionistProfile, error) {
	var profile domain.NutritionistProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormNutritionistRepository) Update(ctx context.Context, profile *domain.NutritionistProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// AssignClient mirrors AssignAthlete: locked capacity check against
// MaxClients, then the link update, one transaction.
func (r *gormNutritionistRepository) AssignClient(ctx context.Context, nutritionistID, athleteID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var nutritionist domain.NutritionistProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&nutritionist, nutritionistID).Error; err != nil {
			return translateError(err)
		}

		var athlete domain.AthleteProfile
		if err := tx.First(&athlete, athleteID).Error; err != nil {
			return translateError(err)
		}
		if athlete.NutritionistID != nil && *athlete.NutritionistID == nutritionistID {
			return repository.ErrDuplicate
		}

		if nutritionist.MaxClients != -1 {
			var count int64
			if err := tx.Model(&domain.AthleteProfile{}).
				Where("nutritionist_id = ?", nutritionistID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(nutritionist.MaxClients) {
				return repository.ErrCapacity
			}
		}

		return tx.Model(&domain.AthleteProfile{}).
			Where("id = ?", athleteID).
			Update("nutritionist_id", nutritionistID).Error
	})
}

func (r *gormNutritionistRepository) CountClients(ctx context.Context, nutritionistID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AthleteProfile{}).
		Where("nutritionist_id = ?", nutritionistID).
		Count(&count).Error
	return count, err
}

func (r *gormNutritionistRepository) ListClients(ctx context.Context, nutritionistID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	return listAthletesLinkedTo(ctx, r.db, "nutritionist_id", nutritionistID, filter)
}

// gormAthleteRepository implements repository.AthleteRepository.
type gormAthleteRepository struct {
	db *gorm.DB
}

// NewAthleteRepository creates a new athlete repository bound to db.
func NewAthleteRepository(db *gorm.DB) repository.AthleteRepository {
	return &gormAthleteRepository{db: db}
}

func (r *gormAthleteRepository) GetByUserID(ctx context.Context, userID uint) (*domain.AthleteProfile, error) {
	var profile domain.AthleteProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormAthleteRepository) GetByID(ctx context.Context, id uint) (*domain.AthleteProfile, error) {
	var profile domain.AthleteProfile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *gormAthleteRepository) Update(ctx context.Context, profile *domain.AthleteProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
