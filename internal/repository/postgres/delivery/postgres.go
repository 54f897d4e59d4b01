package delivery

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tiffin-app-go/internal/clock"
	deliverydomain "tiffin-app-go/internal/domain/delivery"
)

const (
	mealMembersQuery = `SELECT m.id, 'meal' AS kind, s.user_id, m.service_date, m.delivery_slot_id, m.delivery_group_id, m.is_paused, true AS active
FROM meal_instances m
JOIN subscriptions s ON s.id = m.subscription_id`

	curryMembersQuery = `SELECT o.id, 'curry' AS kind, o.user_id, o.order_date AS service_date, o.delivery_slot_id, o.delivery_group_id, false AS is_paused, o.status = 'ordered' AS active
FROM curry_orders o`
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(deliverydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

type memberRow struct {
	ID              string    `gorm:"column:id"`
	Kind            string    `gorm:"column:kind"`
	UserID          string    `gorm:"column:user_id"`
	ServiceDate     time.Time `gorm:"column:service_date"`
	DeliverySlotID  string    `gorm:"column:delivery_slot_id"`
	DeliveryGroupID *string   `gorm:"column:delivery_group_id"`
	IsPaused        bool      `gorm:"column:is_paused"`
	Active          bool      `gorm:"column:active"`
}

func (r *PostgresRepository) LoadMembersForUpdate(ctx context.Context, ids []string) ([]deliverydomain.Member, error) {
	if len(ids) == 0 {
		return []deliverydomain.Member{}, nil
	}

	var meals []memberRow
	if err := r.db.WithContext(ctx).
		Raw(mealMembersQuery+" WHERE m.id IN ? ORDER BY m.id FOR UPDATE OF m", ids).
		Scan(&meals).Error; err != nil {
		return nil, err
	}

	var orders []memberRow
	if err := r.db.WithContext(ctx).
		Raw(curryMembersQuery+" WHERE o.id IN ? ORDER BY o.id FOR UPDATE OF o", ids).
		Scan(&orders).Error; err != nil {
		return nil, err
	}

	return toMembers(append(meals, orders...)), nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, group *deliverydomain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *PostgresRepository) AssignMembers(ctx context.Context, members []deliverydomain.Member, groupID, slotID string) error {
	var mealIDs, orderIDs []string
	for _, member := range members {
		switch member.Kind {
		case deliverydomain.KindMeal:
			mealIDs = append(mealIDs, member.ID)
		case deliverydomain.KindCurry:
			orderIDs = append(orderIDs, member.ID)
		}
	}

	updates := map[string]interface{}{
		"delivery_group_id": groupID,
		"delivery_slot_id":  slotID,
		"updated_at":        time.Now().UTC(),
	}
	if len(mealIDs) > 0 {
		if err := r.db.WithContext(ctx).
			Table("meal_instances").
			Where("id IN ?", mealIDs).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	if len(orderIDs) > 0 {
		if err := r.db.WithContext(ctx).
			Table("curry_orders").
			Where("id IN ?", orderIDs).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetGroupForUpdate(ctx context.Context, groupID string) (*deliverydomain.Group, error) {
	var group deliverydomain.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", groupID).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deliverydomain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	group.ServiceDate = clock.Normalize(group.ServiceDate)
	return &group, nil
}

func (r *PostgresRepository) ClearGroup(ctx context.Context, groupID string) error {
	updates := map[string]interface{}{
		"delivery_group_id": nil,
		"updated_at":        time.Now().UTC(),
	}
	for _, table := range []string{"meal_instances", "curry_orders"} {
		if err := r.db.WithContext(ctx).
			Table(table).
			Where("delivery_group_id = ?", groupID).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) DeleteGroup(ctx context.Context, groupID string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", groupID).
		Delete(&deliverydomain.Group{}).Error
}

func (r *PostgresRepository) ListGroups(ctx context.Context, userID string, date time.Time) ([]deliverydomain.Group, error) {
	var groups []deliverydomain.Group
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND service_date = ?", userID, date).
		Order("created_at asc").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].ServiceDate = clock.Normalize(groups[i].ServiceDate)
	}
	return groups, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, groupIDs []string) ([]deliverydomain.Member, error) {
	if len(groupIDs) == 0 {
		return []deliverydomain.Member{}, nil
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Raw(mealMembersQuery+" WHERE m.delivery_group_id IN ? UNION ALL "+curryMembersQuery+" WHERE o.delivery_group_id IN ?", groupIDs, groupIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toMembers(rows), nil
}

func toMembers(rows []memberRow) []deliverydomain.Member {
	members := make([]deliverydomain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, deliverydomain.Member{
			ID:              row.ID,
			Kind:            deliverydomain.MemberKind(row.Kind),
			UserID:          row.UserID,
			ServiceDate:     clock.Normalize(row.ServiceDate),
			DeliverySlotID:  row.DeliverySlotID,
			DeliveryGroupID: row.DeliveryGroupID,
			IsPaused:        row.IsPaused,
			Active:          row.Active,
		})
	}
	return members
}
