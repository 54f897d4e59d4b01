package upgrade

import (
	"time"

	"github.com/shopspring/decimal"
	"tiffin-app-go/internal/domain/catalog"
)

// Upgrade is a priced diet or cuisine override on top of a subscription for a
// date range. It cannot be removed once StartDate has been reached.
type Upgrade struct {
	ID             string               `gorm:"type:uuid;primaryKey"`
	SubscriptionID string               `gorm:"type:uuid;not null;index"`
	UpgradeType    catalog.UpgradeType  `gorm:"type:varchar(32);not null"`
	Scope          catalog.UpgradeScope `gorm:"type:varchar(8);not null"`
	MealType       *catalog.ItemType    `gorm:"type:varchar(16)"`
	StartDate      time.Time            `gorm:"type:date;not null"`
	EndDate        time.Time            `gorm:"type:date;not null"`
	Price          decimal.Decimal      `gorm:"type:numeric(10,2);not null"`
	CreatedAt      time.Time            `gorm:"autoCreateTime"`
}

func (Upgrade) TableName() string {
	return "subscription_upgrades"
}

// Overlaps reports whether both upgrades would change the same meal on a shared day.
func (u Upgrade) Overlaps(other Upgrade) bool {
	if u.UpgradeType != other.UpgradeType {
		return false
	}
	if u.EndDate.Before(other.StartDate) || other.EndDate.Before(u.StartDate) {
		return false
	}
	if u.MealType != nil && other.MealType != nil {
		return *u.MealType == *other.MealType
	}
	return true
}

// OwnedUpgrade carries the user owning the upgrade's subscription.
type OwnedUpgrade struct {
	Upgrade
	UserID string
}

type ApplyInput struct {
	UpgradeType catalog.UpgradeType
	Scope       catalog.UpgradeScope
	MealType    *catalog.ItemType
	StartDate   time.Time
	EndDate     time.Time
}
