package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidProgressType = errors.New("invalid progress record type")
	ErrValueRequired       = errors.New("a numeric value is required for this record type")
	ErrImageRequired       = errors.New("an image key is required for photo records")
)

// ProgressInput describes one new progress record.
type ProgressInput struct {
	RecordType domain.ProgressType
	Value      *float64
	Unit       string
	BodyPart   string
	ImageKey   string
	Notes      string
	RecordedAt time.Time
}

// UploadTarget is a presigned PUT destination for a progress photo. The
// client uploads directly to object storage and then records the key.
type UploadTarget struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

type ProgressService interface {
	RecordProgress(ctx context.Context, athleteUserID uint, input ProgressInput) (*domain.ProgressRecord, error)
	ListProgress(ctx context.Context, athleteUserID uint, filter repository.ProgressFilter) ([]domain.ProgressRecord, int64, error)
	// ListForAthlete serves the coach-side view by athlete profile id; the
	// caller is responsible for the roster check.
	ListForAthlete(ctx context.Context, athleteProfileID uint, filter repository.ProgressFilter) ([]domain.ProgressRecord, int64, error)
	PhotoUploadURL(ctx context.Context, athleteUserID uint, contentType string) (*UploadTarget, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	athleteRepo  repository.AthleteRepository
	files        storage.FileStorage
	log          *logrus.Logger
}

func NewProgressService(
	progressRepo repository.ProgressRepository,
	athleteRepo repository.AthleteRepository,
	files storage.FileStorage,
	log *logrus.Logger,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		athleteRepo:  athleteRepo,
		files:        files,
		log:          log,
	}
}

// RecordProgress appends one record to the athlete's ledger. Records are
// never updated or removed afterwards.
func (s *progressService) RecordProgress(ctx context.Context, athleteUserID uint, input ProgressInput) (*domain.ProgressRecord, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if !input.RecordType.Valid() {
		return nil, ErrInvalidProgressType
	}
	if input.RecordType == domain.ProgressPhotos {
		if input.ImageKey == "" {
			return nil, ErrImageRequired
		}
	} else if input.Value == nil {
		return nil, ErrValueRequired
	}
	if input.RecordedAt.IsZero() {
		input.RecordedAt = time.Now()
	}

	record := &domain.ProgressRecord{
		AthleteID:  athlete.ID,
		RecordType: input.RecordType,
		Value:      input.Value,
		Unit:       input.Unit,
		BodyPart:   input.BodyPart,
		ImageKey:   input.ImageKey,
		Notes:      input.Notes,
		RecordedAt: input.RecordedAt,
	}
	id, err := s.progressRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return record, nil
}

func (s *progressService) ListProgress(ctx context.Context, athleteUserID uint, filter repository.ProgressFilter) ([]domain.ProgressRecord, int64, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrProfileNotFound
		}
		return nil, 0, err
	}
	return s.ListForAthlete(ctx, athlete.ID, filter)
}

func (s *progressService) ListForAthlete(ctx context.Context, athleteProfileID uint, filter repository.ProgressFilter) ([]domain.ProgressRecord, int64, error) {
	records, total, err := s.progressRepo.List(ctx, athleteProfileID, filter)
	if err != nil {
		return nil, 0, err
	}

	// Stored keys are exchanged for short-lived download URLs at read time;
	// the raw key never leaves the server.
	for i := range records {
		if records[i].ImageKey == "" {
			continue
		}
		url, perr := s.files.GeneratePresignedDownloadURL(ctx, records[i].ImageKey, storage.DefaultPresignedURLExpiry)
		if perr != nil {
			s.log.WithError(perr).WithField("recordId", records[i].ID).Warn("presign download failed")
			continue
		}
		records[i].ImageURL = url
	}
	return records, total, nil
}

func (s *progressService) PhotoUploadURL(ctx context.Context, athleteUserID uint, contentType string) (*UploadTarget, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("progress/%d/%s", athlete.ID, uuid.NewString())
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{
		Key:       key,
		UploadURL: url,
		ExpiresIn: int(storage.DefaultPresignedURLExpiry.Seconds()),
	}, nil
}
