package domain

import (
	"time"
)

// ProgressType classifies a progress record.
type ProgressType string

const (
	ProgressWeight       ProgressType = "weight"
	ProgressBodyFat      ProgressType = "body_fat"
	ProgressMuscleMass   ProgressType = "muscle_mass"
	ProgressMeasurements ProgressType = "measurements"
	ProgressPhotos       ProgressType = "photos"
)

// Valid reports whether p is one of the known record types.
func (p ProgressType) Valid() bool {
	switch p {
	case ProgressWeight, ProgressBodyFat, ProgressMuscleMass, ProgressMeasurements, ProgressPhotos:
		return true
	}
	return false
}

// ProgressRecord is an append-only, athlete-owned measurement. Records are
// only ever created and listed, never updated.
type ProgressRecord struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	AthleteID  uint         `gorm:"not null;index" json:"athleteId"`
	RecordType ProgressType `gorm:"not null" json:"recordType"`
	Value      *float64     `json:"value,omitempty"`
	Unit       string       `json:"unit,omitempty"`
	BodyPart   string       `json:"bodyPart,omitempty"`
	ImageKey   string       `json:"-"` // object storage key, presigned on read
	ImageURL   string       `gorm:"-" json:"imageUrl,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	RecordedAt time.Time    `gorm:"index" json:"recordedAt"`
}
