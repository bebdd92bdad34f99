package domain

import (
	"time"

	"gorm.io/datatypes"
)

// FoodAnalysisRecord persists one structured result returned by the image
// analyzer. The core never depends on how the analyzer produced it.
type FoodAnalysisRecord struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"userId"`
	FoodName      string         `gorm:"not null" json:"foodName"`
	Confidence    float64        `json:"confidence"`
	Calories      float64        `json:"calories"`
	Protein       float64        `json:"protein"`
	Carbohydrates float64        `json:"carbohydrates"`
	Fat           float64        `json:"fat"`
	Fiber         float64        `json:"fiber"`
	ServingSize   string         `json:"servingSize,omitempty"`
	Ingredients   datatypes.JSON `json:"ingredients,omitempty"`
	Tips          datatypes.JSON `json:"tips,omitempty"`
	ImageKey      string         `json:"-"` // object storage key, if the image was kept
	CreatedAt     time.Time      `json:"createdAt"`
}
