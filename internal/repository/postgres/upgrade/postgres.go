package upgrade

import (
	"context"
	"time"

	"gorm.io/gorm"
	"tiffin-app-go/internal/clock"
	upgradedomain "tiffin-app-go/internal/domain/upgrade"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(upgradedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockSubscription(ctx context.Context, subscriptionID string) error {
	var ids []string
	if err := r.db.WithContext(ctx).
		Raw(`SELECT id FROM subscriptions WHERE id = ? FOR UPDATE`, subscriptionID).
		Scan(&ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return upgradedomain.ErrNoActiveSubscription
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, upgrade *upgradedomain.Upgrade) error {
	return r.db.WithContext(ctx).Create(upgrade).Error
}

func (r *PostgresRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]upgradedomain.Upgrade, error) {
	var upgrades []upgradedomain.Upgrade
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("start_date asc").
		Find(&upgrades).Error; err != nil {
		return nil, err
	}
	return normalize(upgrades), nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, subscriptionID string, today time.Time) ([]upgradedomain.Upgrade, error) {
	var upgrades []upgradedomain.Upgrade
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND end_date >= ?", subscriptionID, today).
		Order("start_date asc").
		Find(&upgrades).Error; err != nil {
		return nil, err
	}
	return normalize(upgrades), nil
}

type ownedRow struct {
	upgradedomain.Upgrade
	UserID string `gorm:"column:user_id"`
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, upgradeID string) (*upgradedomain.OwnedUpgrade, error) {
	var rows []ownedRow
	if err := r.db.WithContext(ctx).
		Raw(`SELECT u.*, s.user_id
FROM subscription_upgrades u
JOIN subscriptions s ON s.id = u.subscription_id
WHERE u.id = ?
FOR UPDATE OF u`, upgradeID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, upgradedomain.ErrUpgradeNotFound
	}

	row := rows[0]
	row.StartDate = clock.Normalize(row.StartDate)
	row.EndDate = clock.Normalize(row.EndDate)
	return &upgradedomain.OwnedUpgrade{Upgrade: row.Upgrade, UserID: row.UserID}, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, upgradeID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", upgradeID).
		Delete(&upgradedomain.Upgrade{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return upgradedomain.ErrUpgradeNotFound
	}
	return nil
}

func normalize(upgrades []upgradedomain.Upgrade) []upgradedomain.Upgrade {
	for i := range upgrades {
		upgrades[i].StartDate = clock.Normalize(upgrades[i].StartDate)
		upgrades[i].EndDate = clock.Normalize(upgrades[i].EndDate)
	}
	return upgrades
}
