package catalog

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	catalogdomain "tiffin-app-go/internal/domain/catalog"
)

// PostgresRepository serves read-only catalog lookups. Each lookup is retried
// once when the connection failed before the query reached the server.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListPackages(ctx context.Context) ([]catalogdomain.Package, error) {
	var packages []catalogdomain.Package
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("is_active = ?", true).Order("price asc, name asc").Find(&packages).Error
	})
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PostgresRepository) GetPackage(ctx context.Context, packageID string) (*catalogdomain.Package, error) {
	var pkg catalogdomain.Package
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", packageID).First(&pkg).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogdomain.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PostgresRepository) ListSlots(ctx context.Context) ([]catalogdomain.DeliverySlot, error) {
	var slots []catalogdomain.DeliverySlot
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Order("starts_at asc").Find(&slots).Error
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *PostgresRepository) ListTokenPackages(ctx context.Context) ([]catalogdomain.TokenPackage, error) {
	var packages []catalogdomain.TokenPackage
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("is_active = ?", true).Order("diet_type asc, token_count asc").Find(&packages).Error
	})
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PostgresRepository) GetTokenPackage(ctx context.Context, packageID string) (*catalogdomain.TokenPackage, error) {
	var pkg catalogdomain.TokenPackage
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", packageID).First(&pkg).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogdomain.ErrTokenPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PostgresRepository) ListUpgradePrices(ctx context.Context) ([]catalogdomain.UpgradePrice, error) {
	var prices []catalogdomain.UpgradePrice
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("is_active = ?", true).Order("upgrade_type asc, scope asc, meal_type asc").Find(&prices).Error
	})
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *PostgresRepository) FindUpgradePrice(ctx context.Context, upgradeType catalogdomain.UpgradeType, scope catalogdomain.UpgradeScope, mealType *catalogdomain.ItemType) (*catalogdomain.UpgradePrice, error) {
	var price catalogdomain.UpgradePrice
	err := r.read(ctx, func(db *gorm.DB) error {
		query := db.Where("upgrade_type = ? AND scope = ? AND is_active = ?", upgradeType, scope, true)
		if mealType == nil {
			query = query.Where("meal_type IS NULL")
		} else {
			query = query.Where("meal_type = ?", *mealType)
		}
		return query.First(&price).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogdomain.ErrUpgradePriceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *PostgresRepository) GetAddress(ctx context.Context, addressID string) (*catalogdomain.Address, error) {
	var address catalogdomain.Address
	err := r.read(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", addressID).First(&address).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogdomain.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *PostgresRepository) read(ctx context.Context, query func(db *gorm.DB) error) error {
	err := query(r.db.WithContext(ctx))
	if err != nil && isTransient(err) && ctx.Err() == nil {
		err = query(r.db.WithContext(ctx))
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
