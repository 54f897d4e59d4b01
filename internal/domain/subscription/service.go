package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/internal/lock"
	"tiffin-app-go/internal/notify"
)

type Catalog interface {
	GetPackage(ctx context.Context, packageID string) (*catalog.Package, error)
	GetOwnedAddress(ctx context.Context, userID, addressID string) (*catalog.Address, error)
}

type Service struct {
	repo     Repository
	catalog  Catalog
	clock    clock.Clock
	notifier notify.Notifier
	locker   lock.Locker
}

func NewService(repo Repository, catalog Catalog, clk clock.Clock, notifier notify.Notifier, locker lock.Locker) *Service {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if locker == nil {
		locker = lock.Nop()
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		clock:    clk,
		notifier: notifier,
		locker:   locker,
	}
}

func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*Subscription, error) {
	today := s.clock.Today()
	startDate := clock.Normalize(input.StartDate)
	if startDate.Before(today) {
		return nil, ErrStartDateInPast
	}

	release, err := s.locker.Acquire(ctx, lock.UserKey("subscription", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result Subscription
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := activeOrNone(ctx, tx, userID, today)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrActiveSubscriptionExists
		}

		pkg, err := s.catalog.GetPackage(ctx, input.PackageID)
		if err != nil {
			return err
		}
		if _, err := s.catalog.GetOwnedAddress(ctx, userID, input.AddressID); err != nil {
			return err
		}

		container, err := resolveContainer(pkg, input.ContainerType)
		if err != nil {
			return err
		}

		subscription := Subscription{
			ID:            uuid.NewString(),
			UserID:        userID,
			PackageID:     pkg.ID,
			AddressID:     input.AddressID,
			ContainerType: container,
			StartDate:     startDate,
			EndDate:       clock.AddDays(startDate, pkg.DurationDays-1),
			Status:        StatusActive,
		}
		if err := tx.Create(ctx, &subscription); err != nil {
			return err
		}

		result = subscription
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Subscription confirmed",
		fmt.Sprintf("Your meals start on %s and run until %s.", clock.FormatDate(result.StartDate), clock.FormatDate(result.EndDate)))

	return &result, nil
}

// GetActive returns the user's active subscription. A subscription whose end
// date has passed is completed on read and reported as missing.
func (s *Service) GetActive(ctx context.Context, userID string) (*Subscription, error) {
	var result *Subscription
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		active, err := activeOrNone(ctx, tx, userID, s.clock.Today())
		if err != nil {
			return err
		}
		result = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrSubscriptionNotFound
	}
	return result, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Cancel(ctx context.Context, userID string) (*Subscription, error) {
	release, err := s.locker.Acquire(ctx, lock.UserKey("subscription", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *Subscription
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		active, err := activeOrNone(ctx, tx, userID, s.clock.Today())
		if err != nil || active == nil {
			return err
		}

		changed, err := tx.TransitionStatus(ctx, active.ID, StatusActive, StatusCancelled)
		if err != nil {
			return err
		}
		if !changed {
			return ErrSubscriptionNotFound
		}

		active.Status = StatusCancelled
		result = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrSubscriptionNotFound
	}

	s.notifier.Notify(ctx, userID, "Subscription cancelled", "Your meal subscription has been cancelled.")

	return result, nil
}

func (s *Service) DaysRemaining(subscription *Subscription) int {
	return subscription.DaysRemaining(s.clock.Today())
}

// activeOrNone loads the active subscription, completing it first when it has
// run past its end date.
func activeOrNone(ctx context.Context, tx Repository, userID string, today time.Time) (*Subscription, error) {
	active, err := tx.GetActiveByUser(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if active.EndDate.Before(today) {
		if _, err := tx.TransitionStatus(ctx, active.ID, StatusActive, StatusCompleted); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return active, nil
}

func resolveContainer(pkg *catalog.Package, requested string) (string, error) {
	if !pkg.AllowContainerChoice {
		return pkg.DefaultContainer, nil
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return pkg.DefaultContainer, nil
	}
	if !pkg.AllowsContainer(requested) {
		return "", fmt.Errorf("%w: %s", ErrInvalidContainer, requested)
	}
	return requested, nil
}
