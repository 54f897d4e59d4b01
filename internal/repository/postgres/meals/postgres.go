package meals

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tiffin-app-go/internal/clock"
	mealsdomain "tiffin-app-go/internal/domain/meals"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(mealsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) InsertMissing(ctx context.Context, instances []mealsdomain.MealInstance) error {
	if len(instances) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "subscription_id"},
				{Name: "service_date"},
				{Name: "item_type"},
			},
			DoNothing: true,
		}).
		Create(&instances).Error
}

func (r *PostgresRepository) ListByDates(ctx context.Context, subscriptionID string, dates []time.Time) ([]mealsdomain.MealInstance, error) {
	var instances []mealsdomain.MealInstance
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND service_date IN ?", subscriptionID, dates).
		Order("service_date asc").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	return normalize(instances), nil
}

func (r *PostgresRepository) LockByDate(ctx context.Context, subscriptionID string, date time.Time) ([]mealsdomain.MealInstance, error) {
	var instances []mealsdomain.MealInstance
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("subscription_id = ? AND service_date = ?", subscriptionID, date).
		Order("id asc").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	return normalize(instances), nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, mealID string) (*mealsdomain.MealInstance, error) {
	var instance mealsdomain.MealInstance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", mealID).
		First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mealsdomain.ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	instance.ServiceDate = clock.Normalize(instance.ServiceDate)
	return &instance, nil
}

func (r *PostgresRepository) SetPaused(ctx context.Context, mealIDs []string, paused bool) error {
	return r.db.WithContext(ctx).
		Model(&mealsdomain.MealInstance{}).
		Where("id IN ?", mealIDs).
		Update("is_paused", paused).Error
}

func (r *PostgresRepository) UpdateSlot(ctx context.Context, mealID, slotID string) error {
	return r.db.WithContext(ctx).
		Model(&mealsdomain.MealInstance{}).
		Where("id = ?", mealID).
		Update("delivery_slot_id", slotID).Error
}

func (r *PostgresRepository) AppendPauseRecord(ctx context.Context, record *mealsdomain.PauseRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PostgresRepository) ListPauseRecords(ctx context.Context, subscriptionID string) ([]mealsdomain.PauseRecord, error) {
	var records []mealsdomain.PauseRecord
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("paused_at desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		records[i].MealDate = clock.Normalize(records[i].MealDate)
	}
	return records, nil
}

func normalize(instances []mealsdomain.MealInstance) []mealsdomain.MealInstance {
	for i := range instances {
		instances[i].ServiceDate = clock.Normalize(instances[i].ServiceDate)
	}
	return instances
}
