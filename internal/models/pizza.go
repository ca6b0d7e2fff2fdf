package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pizza represents a pizza on the menu
type Pizza struct {
	ID              uint             `gorm:"primaryKey"`
	Name            string           `gorm:"size:100;not null;index"`
	Description     string           `gorm:"size:500"`
	Price           decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	ImageURL        string           `gorm:"size:255"`
	Available       bool             `gorm:"not null"`
	NutritionalInfo *NutritionalInfo `gorm:"foreignKey:PizzaID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// NutritionalInfo is owned by exactly one pizza and replaced together with it
type NutritionalInfo struct {
	ID       uint `gorm:"primaryKey"`
	PizzaID  uint `gorm:"uniqueIndex;not null"`
	Calories int
	Protein  float64
	Carbs    float64
	Fat      float64
}

func (NutritionalInfo) TableName() string {
	return "nutritional_infos"
}
