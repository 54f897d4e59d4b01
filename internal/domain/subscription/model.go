package subscription

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Subscription is a user's meal plan. At most one row per user is active;
// the partial unique index on (user_id) WHERE status = 'active' enforces it.
type Subscription struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	UserID        string    `gorm:"not null;index"`
	PackageID     string    `gorm:"type:uuid;not null"`
	AddressID     string    `gorm:"type:uuid;not null"`
	ContainerType string    `gorm:"type:varchar(32);not null"`
	StartDate     time.Time `gorm:"type:date;not null"`
	EndDate       time.Time `gorm:"type:date;not null"`
	Status        Status    `gorm:"type:varchar(16);not null;default:active"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// DaysRemaining is EndDate - today, never negative.
func (s Subscription) DaysRemaining(today time.Time) int {
	days := int(s.EndDate.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Covers reports whether date falls inside [StartDate, EndDate].
func (s Subscription) Covers(date time.Time) bool {
	return !date.Before(s.StartDate) && !date.After(s.EndDate)
}

type CreateInput struct {
	PackageID     string
	AddressID     string
	ContainerType string
	StartDate     time.Time
}
