package meals

import (
	"time"

	"tiffin-app-go/internal/domain/catalog"
)

// MealTypeAll applies a pause or unpause to every item materialized for the date.
const MealTypeAll = "all"

type MealInstance struct {
	ID              string           `gorm:"type:uuid;primaryKey"`
	SubscriptionID  string           `gorm:"type:uuid;not null;uniqueIndex:idx_meal_instances_key,priority:1"`
	ServiceDate     time.Time        `gorm:"type:date;not null;uniqueIndex:idx_meal_instances_key,priority:2"`
	ItemType        catalog.ItemType `gorm:"type:varchar(16);not null;uniqueIndex:idx_meal_instances_key,priority:3"`
	DeliverySlotID  string           `gorm:"type:uuid;not null"`
	DeliveryGroupID *string          `gorm:"type:uuid;index"`
	IsPaused        bool             `gorm:"not null;default:false"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
}

type PauseAction string

const (
	ActionPause   PauseAction = "pause"
	ActionUnpause PauseAction = "unpause"
)

// PauseRecord is an append-only audit row. Unpausing never removes the pause row.
type PauseRecord struct {
	ID             string      `gorm:"type:uuid;primaryKey"`
	SubscriptionID string      `gorm:"type:uuid;not null;index"`
	MealDate       time.Time   `gorm:"type:date;not null"`
	MealType       string      `gorm:"type:varchar(16);not null"`
	Action         PauseAction `gorm:"type:varchar(16);not null"`
	PausedAt       time.Time   `gorm:"not null"`
}

// MealView is a meal instance with its delivery slot resolved.
type MealView struct {
	MealInstance
	Slot catalog.DeliverySlot
}

type DaySchedule struct {
	Date  time.Time
	Meals []MealView
}
