package upgrade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/internal/domain/subscription"
	"tiffin-app-go/internal/lock"
	"tiffin-app-go/internal/notify"
)

const daysPerWeek = 7

type Subscriptions interface {
	GetActive(ctx context.Context, userID string) (*subscription.Subscription, error)
}

type Catalog interface {
	PackageByID(ctx context.Context, packageID string) (*catalog.Package, error)
	FindUpgradePrice(ctx context.Context, upgradeType catalog.UpgradeType, scope catalog.UpgradeScope, mealType *catalog.ItemType) (*catalog.UpgradePrice, error)
}

type Service struct {
	repo          Repository
	subscriptions Subscriptions
	catalog       Catalog
	clock         clock.Clock
	notifier      notify.Notifier
	locker        lock.Locker
}

func NewService(repo Repository, subscriptions Subscriptions, catalog Catalog, clk clock.Clock, notifier notify.Notifier, locker lock.Locker) *Service {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if locker == nil {
		locker = lock.Nop()
	}
	return &Service{
		repo:          repo,
		subscriptions: subscriptions,
		catalog:       catalog,
		clock:         clk,
		notifier:      notifier,
		locker:        locker,
	}
}

// Price is unitPrice times the inclusive day count, or times the number of
// started weeks for week scope.
func Price(unitPrice decimal.Decimal, scope catalog.UpgradeScope, days int) decimal.Decimal {
	multiplier := days
	if scope == catalog.ScopeWeek {
		multiplier = (days + daysPerWeek - 1) / daysPerWeek
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(multiplier)))
}

func (s *Service) Apply(ctx context.Context, userID string, input ApplyInput) (*Upgrade, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	startDate := clock.Normalize(input.StartDate)
	endDate := clock.Normalize(input.EndDate)
	if endDate.Before(startDate) {
		return nil, ErrInvalidRange
	}
	if startDate.Before(s.clock.Today()) {
		return nil, ErrStartDateInPast
	}

	sub, err := s.subscriptions.GetActive(ctx, userID)
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}

	pkg, err := s.catalog.PackageByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.AllowsUpgrade(input.UpgradeType) {
		return nil, fmt.Errorf("%w: %s", ErrUpgradeNotAllowed, input.UpgradeType)
	}
	if input.MealType != nil && !pkg.Includes(*input.MealType) {
		return nil, fmt.Errorf("%w: %s", ErrMealNotInPackage, *input.MealType)
	}
	if !sub.Covers(startDate) || !sub.Covers(endDate) {
		return nil, ErrOutsideSubscription
	}

	price, err := s.catalog.FindUpgradePrice(ctx, input.UpgradeType, input.Scope, input.MealType)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.UserKey("upgrade", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	upgrade := Upgrade{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UpgradeType:    input.UpgradeType,
		Scope:          input.Scope,
		MealType:       input.MealType,
		StartDate:      startDate,
		EndDate:        endDate,
		Price:          Price(price.UnitPrice, input.Scope, clock.InclusiveDays(startDate, endDate)),
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockSubscription(ctx, sub.ID); err != nil {
			return err
		}
		existing, err := tx.ListBySubscription(ctx, sub.ID)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if upgrade.Overlaps(other) {
				return ErrUpgradeOverlap
			}
		}
		return tx.Create(ctx, &upgrade)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Upgrade added",
		fmt.Sprintf("%s upgrade from %s to %s for %s.", upgrade.UpgradeType, clock.FormatDate(startDate), clock.FormatDate(endDate), upgrade.Price.StringFixed(2)))

	return &upgrade, nil
}

// ListActive returns the upgrades of the active subscription that have not ended.
func (s *Service) ListActive(ctx context.Context, userID string) ([]Upgrade, error) {
	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActive(ctx, sub.ID, s.clock.Today())
}

// Remove deletes an upgrade that has not started yet.
func (s *Service) Remove(ctx context.Context, userID, upgradeID string) error {
	var removed Upgrade
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		owned, err := tx.GetForUpdate(ctx, upgradeID)
		if err != nil {
			return err
		}
		if owned.UserID != userID {
			return ErrUpgradeForbidden
		}
		if !owned.StartDate.After(s.clock.Today()) {
			return ErrUpgradeStarted
		}
		removed = owned.Upgrade
		return tx.Delete(ctx, owned.ID)
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, userID, "Upgrade removed",
		fmt.Sprintf("%s upgrade from %s was removed.", removed.UpgradeType, clock.FormatDate(removed.StartDate)))
	return nil
}

func validateInput(input ApplyInput) error {
	switch input.UpgradeType {
	case catalog.UpgradeVegToNonVeg, catalog.UpgradeSouthToNorth:
	default:
		return ErrInvalidUpgradeType
	}

	switch input.Scope {
	case catalog.ScopeMeal:
		if input.MealType == nil {
			return ErrMealTypeRequired
		}
		if !input.MealType.Valid() {
			return fmt.Errorf("%w: %s", ErrMealTypeRequired, *input.MealType)
		}
	case catalog.ScopeDay, catalog.ScopeWeek:
		if input.MealType != nil {
			return ErrMealTypeNotAllowed
		}
	default:
		return ErrInvalidScope
	}
	return nil
}
