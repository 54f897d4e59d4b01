package meals

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/internal/domain/subscription"
	"tiffin-app-go/internal/notify"
)

type Subscriptions interface {
	GetActive(ctx context.Context, userID string) (*subscription.Subscription, error)
}

type Catalog interface {
	PackageByID(ctx context.Context, packageID string) (*catalog.Package, error)
	SlotsByItem(ctx context.Context, items []catalog.ItemType) (map[catalog.ItemType]catalog.DeliverySlot, error)
	AllSlots(ctx context.Context) ([]catalog.DeliverySlot, error)
	GetSlot(ctx context.Context, slotID string) (*catalog.DeliverySlot, error)
}

type Service struct {
	repo          Repository
	subscriptions Subscriptions
	catalog       Catalog
	clock         clock.Clock
	notifier      notify.Notifier
}

func NewService(repo Repository, subscriptions Subscriptions, catalog Catalog, clk clock.Clock, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Service{
		repo:          repo,
		subscriptions: subscriptions,
		catalog:       catalog,
		clock:         clk,
		notifier:      notifier,
	}
}

// EnsureMaterialized creates the missing meal instances of the subscription
// for dates and returns every instance on those dates. Only today and
// tomorrow can be materialized. Dates outside the subscription yield no meals.
func (s *Service) EnsureMaterialized(ctx context.Context, sub *subscription.Subscription, dates []time.Time) ([]MealView, error) {
	pkg, err := s.catalog.PackageByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}

	var instances []MealInstance
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		instances, err = s.materialize(ctx, tx, sub, pkg, dates)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.views(ctx, instances)
}

// Schedule materializes and returns the meals for today and tomorrow.
func (s *Service) Schedule(ctx context.Context, userID string) ([]DaySchedule, error) {
	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	window := clock.Window(s.clock)
	views, err := s.EnsureMaterialized(ctx, sub, window)
	if err != nil {
		return nil, err
	}

	days := make([]DaySchedule, 0, len(window))
	for _, date := range window {
		day := DaySchedule{Date: date, Meals: make([]MealView, 0)}
		for _, view := range views {
			if view.ServiceDate.Equal(date) {
				day.Meals = append(day.Meals, view)
			}
		}
		days = append(days, day)
	}
	return days, nil
}

// Pause marks the target meals of date as paused. mealType is an item type or
// MealTypeAll. With MealTypeAll the meals not yet paused are paused and the call
// fails only when every meal of the date is already paused. Grouped meals must
// be ungrouped first.
func (s *Service) Pause(ctx context.Context, userID string, date time.Time, mealType string) ([]MealView, error) {
	return s.setPaused(ctx, userID, date, mealType, true)
}

// Unpause reverses Pause. Unpausing a meal that is not paused changes nothing
// and records nothing.
func (s *Service) Unpause(ctx context.Context, userID string, date time.Time, mealType string) ([]MealView, error) {
	return s.setPaused(ctx, userID, date, mealType, false)
}

func (s *Service) setPaused(ctx context.Context, userID string, date time.Time, mealType string, paused bool) ([]MealView, error) {
	date = clock.Normalize(date)
	if err := s.checkChangeAllowed(date); err != nil {
		return nil, err
	}

	mealType = strings.ToLower(strings.TrimSpace(mealType))
	if mealType != MealTypeAll && !catalog.ItemType(mealType).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMealType, mealType)
	}

	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Covers(date) {
		return nil, ErrNoMealsOnDate
	}

	pkg, err := s.catalog.PackageByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}
	if mealType == MealTypeAll {
		if len(pkg.ItemTypes) == 0 {
			return nil, ErrMealNotInPackage
		}
	} else if !pkg.Includes(catalog.ItemType(mealType)) {
		return nil, fmt.Errorf("%w: %s", ErrMealNotInPackage, mealType)
	}

	action := ActionUnpause
	if paused {
		action = ActionPause
	}

	var (
		dayMeals []MealInstance
		changed  bool
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := s.materialize(ctx, tx, sub, pkg, []time.Time{date}); err != nil {
			return err
		}

		locked, err := tx.LockByDate(ctx, sub.ID, date)
		if err != nil {
			return err
		}

		targets := make([]string, 0, len(locked))
		matched := 0
		for i := range locked {
			if mealType != MealTypeAll && string(locked[i].ItemType) != mealType {
				continue
			}
			matched++
			if locked[i].IsPaused != paused {
				if paused && locked[i].DeliveryGroupID != nil {
					return fmt.Errorf("%w: %s", ErrMealGrouped, locked[i].ItemType)
				}
				targets = append(targets, locked[i].ID)
				locked[i].IsPaused = paused
			}
		}
		dayMeals = locked

		if matched == 0 {
			return ErrMealNotInPackage
		}
		if len(targets) == 0 {
			if paused {
				return ErrAlreadyPaused
			}
			return nil
		}

		if err := tx.SetPaused(ctx, targets, paused); err != nil {
			return err
		}
		changed = true

		return tx.AppendPauseRecord(ctx, &PauseRecord{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			MealDate:       date,
			MealType:       mealType,
			Action:         action,
			PausedAt:       s.clock.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifier.Notify(ctx, userID, pauseTitle(paused), pauseMessage(paused, mealType, date))
	}

	return s.views(ctx, dayMeals)
}

// ReassignSlot moves one meal to another delivery slot. Grouped meals take
// the slot of their group and must be ungrouped first.
func (s *Service) ReassignSlot(ctx context.Context, userID, mealID, slotID string) (*MealView, error) {
	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	slot, err := s.catalog.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	var result MealInstance
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		meal, err := tx.GetForUpdate(ctx, mealID)
		if err != nil {
			return err
		}
		if meal.SubscriptionID != sub.ID {
			return ErrMealForbidden
		}
		if err := s.checkChangeAllowed(meal.ServiceDate); err != nil {
			return err
		}
		if meal.DeliveryGroupID != nil {
			return ErrMealGrouped
		}
		if meal.IsPaused {
			return ErrMealPaused
		}

		if err := tx.UpdateSlot(ctx, meal.ID, slot.ID); err != nil {
			return err
		}

		meal.DeliverySlotID = slot.ID
		result = *meal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MealView{MealInstance: result, Slot: *slot}, nil
}

// PauseHistory lists the pause audit trail of the active subscription, newest first.
func (s *Service) PauseHistory(ctx context.Context, userID string) ([]PauseRecord, error) {
	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPauseRecords(ctx, sub.ID)
}

// LunchFor finds the user's lunch for date, materializing it when date is
// inside the window.
func (s *Service) LunchFor(ctx context.Context, userID string, date time.Time) (*MealInstance, error) {
	date = clock.Normalize(date)
	if !clock.InWindow(s.clock, date) {
		return nil, ErrOutsideWindow
	}

	sub, err := s.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	views, err := s.EnsureMaterialized(ctx, sub, []time.Time{date})
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].ItemType == catalog.ItemLunch {
			meal := views[i].MealInstance
			return &meal, nil
		}
	}
	return nil, ErrMealNotFound
}

func (s *Service) checkChangeAllowed(date time.Time) error {
	if !clock.InWindow(s.clock, date) {
		return fmt.Errorf("%w: %s", ErrOutsideWindow, clock.FormatDate(date))
	}
	if date.Equal(s.clock.Today()) && !clock.IsBeforeCutoff(s.clock.Now()) {
		return ErrCutoffPassed
	}
	return nil
}

func (s *Service) materialize(ctx context.Context, tx Repository, sub *subscription.Subscription, pkg *catalog.Package, dates []time.Time) ([]MealInstance, error) {
	covered := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		date = clock.Normalize(date)
		if !clock.InWindow(s.clock, date) {
			return nil, fmt.Errorf("%w: %s", ErrOutsideWindow, clock.FormatDate(date))
		}
		if sub.Covers(date) {
			covered = append(covered, date)
		}
	}
	if len(covered) == 0 || len(pkg.ItemTypes) == 0 {
		return []MealInstance{}, nil
	}

	slots, err := s.catalog.SlotsByItem(ctx, pkg.ItemTypes)
	if err != nil {
		return nil, err
	}

	instances := make([]MealInstance, 0, len(covered)*len(pkg.ItemTypes))
	for _, date := range covered {
		for _, item := range pkg.ItemTypes {
			instances = append(instances, MealInstance{
				ID:             uuid.NewString(),
				SubscriptionID: sub.ID,
				ServiceDate:    date,
				ItemType:       item,
				DeliverySlotID: slots[item].ID,
			})
		}
	}
	if err := tx.InsertMissing(ctx, instances); err != nil {
		return nil, err
	}

	return tx.ListByDates(ctx, sub.ID, covered)
}

func (s *Service) views(ctx context.Context, instances []MealInstance) ([]MealView, error) {
	slots, err := s.catalog.AllSlots(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.DeliverySlot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}

	views := make([]MealView, 0, len(instances))
	for _, instance := range instances {
		slot, ok := byID[instance.DeliverySlotID]
		if !ok {
			slot = catalog.DeliverySlot{ID: instance.DeliverySlotID}
		}
		views = append(views, MealView{MealInstance: instance, Slot: slot})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].ServiceDate.Equal(views[j].ServiceDate) {
			return views[i].ServiceDate.Before(views[j].ServiceDate)
		}
		return itemRank(views[i].ItemType) < itemRank(views[j].ItemType)
	})
	return views, nil
}

func itemRank(item catalog.ItemType) int {
	for i, candidate := range catalog.ItemTypes {
		if candidate == item {
			return i
		}
	}
	return len(catalog.ItemTypes)
}

func pauseTitle(paused bool) string {
	if paused {
		return "Meal paused"
	}
	return "Meal resumed"
}

func pauseMessage(paused bool, mealType string, date time.Time) string {
	what := mealType
	if mealType == MealTypeAll {
		what = "all meals"
	}
	if paused {
		return fmt.Sprintf("Paused %s on %s.", what, clock.FormatDate(date))
	}
	return fmt.Sprintf("Resumed %s on %s.", what, clock.FormatDate(date))
}
