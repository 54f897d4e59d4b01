package curry

import (
	"time"

	"tiffin-app-go/internal/domain/catalog"
)

// Wallet is a prepaid token balance per user and diet. 0 <= UsedTokens <= TotalTokens
// is enforced by a check constraint; debits and credits are conditional updates.
type Wallet struct {
	ID          string           `gorm:"type:uuid;primaryKey"`
	UserID      string           `gorm:"not null;uniqueIndex:idx_curry_wallets_user_diet,priority:1"`
	DietType    catalog.DietType `gorm:"type:varchar(16);not null;uniqueIndex:idx_curry_wallets_user_diet,priority:2"`
	TotalTokens int              `gorm:"not null;default:0"`
	UsedTokens  int              `gorm:"not null;default:0"`
	ValidUntil  time.Time        `gorm:"type:date;not null"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "curry_wallets"
}

func (w Wallet) RemainingTokens() int {
	return w.TotalTokens - w.UsedTokens
}

func (w Wallet) IsExpired(today time.Time) bool {
	return w.ValidUntil.Before(today)
}

type OrderStatus string

const (
	StatusOrdered   OrderStatus = "ordered"
	StatusCancelled OrderStatus = "cancelled"
	StatusFulfilled OrderStatus = "fulfilled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOrdered, StatusCancelled, StatusFulfilled:
		return true
	}
	return false
}

// Order is one curry delivery paid with a single token. A partial unique index
// allows one "ordered" row per user and date.
type Order struct {
	ID              string              `gorm:"type:uuid;primaryKey"`
	UserID          string              `gorm:"not null;index"`
	WalletID        string              `gorm:"type:uuid;not null;index"`
	CuisineType     catalog.CuisineType `gorm:"type:varchar(16);not null"`
	OrderDate       time.Time           `gorm:"type:date;not null"`
	DeliverySlotID  string              `gorm:"type:uuid;not null"`
	DeliveryGroupID *string             `gorm:"type:uuid;index"`
	Status          OrderStatus         `gorm:"type:varchar(16);not null;default:ordered"`
	CreatedAt       time.Time           `gorm:"autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "curry_orders"
}

// Balance is a wallet as seen on a given day.
type Balance struct {
	Wallet
	Remaining int
	Expired   bool
}

type PlaceOrderInput struct {
	DietType       catalog.DietType
	CuisineType    catalog.CuisineType
	OrderDate      time.Time
	DeliverySlotID string
	GroupWithMeal  bool
}
