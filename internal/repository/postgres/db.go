package postgres

import (
	"errors"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens a Postgres connection pool via GORM.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for every domain entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.TrainerProfile{},
		&domain.NutritionistProfile{},
		&domain.AthleteProfile{},
		&domain.Exercise{},
		&domain.WorkoutTemplate{},
		&domain.WorkoutTemplateExercise{},
		&domain.AssignedWorkout{},
		&domain.WorkoutLog{},
		&domain.Food{},
		&domain.NutritionPlan{},
		&domain.Meal{},
		&domain.MealFood{},
		&domain.FoodLog{},
		&domain.ProgressRecord{},
		&domain.Subscription{},
		&domain.Notification{},
		&domain.Message{},
		&domain.FoodAnalysisRecord{},
		&domain.PasswordResetToken{},
	)
}

// CloseDB releases the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps GORM errors to repository errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}
