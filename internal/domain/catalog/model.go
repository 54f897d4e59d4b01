package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DietType string

const (
	DietVeg    DietType = "veg"
	DietNonVeg DietType = "nonveg"
)

type CuisineType string

const (
	CuisineSouth CuisineType = "south"
	CuisineNorth CuisineType = "north"
)

type ItemType string

const (
	ItemBreakfast ItemType = "breakfast"
	ItemLunch     ItemType = "lunch"
	ItemDinner    ItemType = "dinner"
	ItemSnacks    ItemType = "snacks"
)

// ItemTypes lists every meal item in delivery order.
var ItemTypes = []ItemType{ItemBreakfast, ItemLunch, ItemDinner, ItemSnacks}

func (t ItemType) Valid() bool {
	for _, item := range ItemTypes {
		if item == t {
			return true
		}
	}
	return false
}

type SlotCode string

const (
	SlotMorning       SlotCode = "morning"
	SlotAfternoon     SlotCode = "afternoon"
	SlotEveningDinner SlotCode = "evening_dinner"
	SlotEveningSnack  SlotCode = "evening_snack"
)

// DefaultSlotCodes maps each item to the slot it is delivered in unless grouped or reassigned.
var DefaultSlotCodes = map[ItemType]SlotCode{
	ItemBreakfast: SlotMorning,
	ItemLunch:     SlotAfternoon,
	ItemDinner:    SlotEveningDinner,
	ItemSnacks:    SlotEveningSnack,
}

type UpgradeType string

const (
	UpgradeVegToNonVeg  UpgradeType = "veg_to_nonveg"
	UpgradeSouthToNorth UpgradeType = "south_to_north"
)

type UpgradeScope string

const (
	ScopeMeal UpgradeScope = "meal"
	ScopeDay  UpgradeScope = "day"
	ScopeWeek UpgradeScope = "week"
)

type Package struct {
	ID                   string                        `gorm:"type:uuid;primaryKey"`
	Name                 string                        `gorm:"not null"`
	DietType             DietType                      `gorm:"type:varchar(16);not null"`
	CuisineType          CuisineType                   `gorm:"type:varchar(16);not null"`
	DurationDays         int                           `gorm:"not null"`
	ItemTypes            datatypes.JSONSlice[ItemType] `gorm:"type:jsonb;not null"`
	AllowContainerChoice bool                          `gorm:"not null;default:false"`
	DefaultContainer     string                        `gorm:"not null"`
	AllowedContainers    datatypes.JSONSlice[string]   `gorm:"type:jsonb;not null"`
	AllowsDietUpgrade    bool                          `gorm:"not null;default:false"`
	AllowsCuisineUpgrade bool                          `gorm:"not null;default:false"`
	Price                decimal.Decimal               `gorm:"type:numeric(10,2);not null"`
	IsActive             bool                          `gorm:"not null;default:true"`
	CreatedAt            time.Time                     `gorm:"autoCreateTime"`
}

func (p Package) Includes(item ItemType) bool {
	for _, included := range p.ItemTypes {
		if included == item {
			return true
		}
	}
	return false
}

func (p Package) AllowsContainer(container string) bool {
	for _, allowed := range p.AllowedContainers {
		if allowed == container {
			return true
		}
	}
	return false
}

// AllowsUpgrade reports whether the package flag gating upgradeType is set.
func (p Package) AllowsUpgrade(upgradeType UpgradeType) bool {
	switch upgradeType {
	case UpgradeVegToNonVeg:
		return p.AllowsDietUpgrade
	case UpgradeSouthToNorth:
		return p.AllowsCuisineUpgrade
	}
	return false
}

type DeliverySlot struct {
	ID       string   `gorm:"type:uuid;primaryKey"`
	Code     SlotCode `gorm:"type:varchar(32);not null;index"`
	Label    string   `gorm:"not null"`
	StartsAt string   `gorm:"type:varchar(5);not null"`
	EndsAt   string   `gorm:"type:varchar(5);not null"`
	IsActive bool     `gorm:"not null;default:true"`
}

type TokenPackage struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"not null"`
	DietType     DietType        `gorm:"type:varchar(16);not null"`
	TokenCount   int             `gorm:"not null"`
	ValidityDays int             `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsActive     bool            `gorm:"not null;default:true"`
}

type UpgradePrice struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	UpgradeType UpgradeType     `gorm:"type:varchar(32);not null"`
	Scope       UpgradeScope    `gorm:"type:varchar(8);not null"`
	MealType    *ItemType       `gorm:"type:varchar(16)"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsActive    bool            `gorm:"not null;default:true"`
}

type Address struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	UserID  string `gorm:"not null;index"`
	Label   string `gorm:"not null"`
	Line1   string `gorm:"not null"`
	City    string `gorm:"not null"`
	Pincode string `gorm:"type:varchar(10);not null"`
}
