package delivery

import "time"

// Group bundles meal instances and curry orders of one user and date into a
// single delivery. Members point at the group; deleting it leaves them intact.
type Group struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"not null;index:idx_delivery_groups_user_date,priority:1"`
	ServiceDate time.Time `gorm:"type:date;not null;index:idx_delivery_groups_user_date,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

type MemberKind string

const (
	KindMeal  MemberKind = "meal"
	KindCurry MemberKind = "curry"
)

// Member is the part of a meal instance or curry order that grouping reads.
type Member struct {
	ID              string
	Kind            MemberKind
	UserID          string
	ServiceDate     time.Time
	DeliverySlotID  string
	DeliveryGroupID *string
	IsPaused        bool
	// Active is false for curry orders that are no longer "ordered".
	Active bool
}

type GroupView struct {
	Group
	DeliverySlotID string
	Members        []Member
}

func (Group) TableName() string {
	return "delivery_groups"
}
