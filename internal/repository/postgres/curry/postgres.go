package curry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	currydomain "tiffin-app-go/internal/domain/curry"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(currydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateWalletIfAbsent(ctx context.Context, wallet *currydomain.Wallet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "diet_type"}},
			DoNothing: true,
		}).
		Create(wallet).Error
}

func (r *PostgresRepository) GetWalletForUpdate(ctx context.Context, userID string, dietType catalog.DietType) (*currydomain.Wallet, error) {
	var wallet currydomain.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND diet_type = ?", userID, dietType).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, currydomain.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	wallet.ValidUntil = clock.Normalize(wallet.ValidUntil)
	return &wallet, nil
}

func (r *PostgresRepository) UpdateWallet(ctx context.Context, wallet *currydomain.Wallet) error {
	return r.db.WithContext(ctx).
		Model(&currydomain.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"total_tokens": wallet.TotalTokens,
			"valid_until":  wallet.ValidUntil,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *PostgresRepository) DebitToken(ctx context.Context, walletID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&currydomain.Wallet{}).
		Where("id = ? AND used_tokens < total_tokens", walletID).
		Updates(map[string]interface{}{
			"used_tokens": gorm.Expr("used_tokens + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) CreditToken(ctx context.Context, walletID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&currydomain.Wallet{}).
		Where("id = ? AND used_tokens > 0", walletID).
		Updates(map[string]interface{}{
			"used_tokens": gorm.Expr("used_tokens - 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) ListWallets(ctx context.Context, userID string) ([]currydomain.Wallet, error) {
	var wallets []currydomain.Wallet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("diet_type asc").
		Find(&wallets).Error; err != nil {
		return nil, err
	}
	for i := range wallets {
		wallets[i].ValidUntil = clock.Normalize(wallets[i].ValidUntil)
	}
	return wallets, nil
}

func (r *PostgresRepository) HasActiveOrderOn(ctx context.Context, userID string, date time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&currydomain.Order{}).
		Where("user_id = ? AND order_date = ? AND status = ?", userID, date, currydomain.StatusOrdered).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *currydomain.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if isUniqueViolation(err) {
		return currydomain.ErrDuplicateOrder
	}
	return err
}

func (r *PostgresRepository) GetOrderForUpdate(ctx context.Context, orderID string) (*currydomain.Order, error) {
	var order currydomain.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, currydomain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	order.OrderDate = clock.Normalize(order.OrderDate)
	return &order, nil
}

func (r *PostgresRepository) TransitionOrder(ctx context.Context, orderID string, from, to currydomain.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&currydomain.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) DetachOrder(ctx context.Context, orderID, groupID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&currydomain.Order{}).
		Where("id = ?", orderID).
		Update("delivery_group_id", nil).Error; err != nil {
		return err
	}

	var remaining int64
	if err := db.Raw(`SELECT
	(SELECT COUNT(*) FROM meal_instances WHERE delivery_group_id = ?) +
	(SELECT COUNT(*) FROM curry_orders WHERE delivery_group_id = ?)`, groupID, groupID).
		Scan(&remaining).Error; err != nil {
		return err
	}
	if remaining >= 2 {
		return nil
	}

	if err := db.Exec("UPDATE meal_instances SET delivery_group_id = NULL WHERE delivery_group_id = ?", groupID).Error; err != nil {
		return err
	}
	if err := db.Exec("UPDATE curry_orders SET delivery_group_id = NULL WHERE delivery_group_id = ?", groupID).Error; err != nil {
		return err
	}
	return db.Exec("DELETE FROM delivery_groups WHERE id = ?", groupID).Error
}

func (r *PostgresRepository) ListOrders(ctx context.Context, userID string, status *currydomain.OrderStatus) ([]currydomain.Order, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []currydomain.Order
	if err := query.Order("order_date desc").Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].OrderDate = clock.Normalize(orders[i].OrderDate)
	}
	return orders, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
