package curry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tiffin-app-go/internal/apperr"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/internal/domain/delivery"
	"tiffin-app-go/internal/domain/meals"
	"tiffin-app-go/internal/lock"
	"tiffin-app-go/internal/notify"
	"tiffin-app-go/pkg/logger"
)

type Catalog interface {
	GetTokenPackage(ctx context.Context, packageID string) (*catalog.TokenPackage, error)
	GetSlot(ctx context.Context, slotID string) (*catalog.DeliverySlot, error)
	DefaultLunchSlot(ctx context.Context) (*catalog.DeliverySlot, error)
}

type LunchLocator interface {
	LunchFor(ctx context.Context, userID string, date time.Time) (*meals.MealInstance, error)
}

type Pairer interface {
	Pair(ctx context.Context, userID, anchorID, memberID string) (*delivery.GroupView, error)
}

type Service struct {
	repo     Repository
	catalog  Catalog
	lunches  LunchLocator
	pairer   Pairer
	clock    clock.Clock
	notifier notify.Notifier
	locker   lock.Locker
	log      logger.Logger
}

type Deps struct {
	Repo     Repository
	Catalog  Catalog
	Lunches  LunchLocator
	Pairer   Pairer
	Clock    clock.Clock
	Notifier notify.Notifier
	Locker   lock.Locker
	Log      logger.Logger
}

func NewService(deps Deps) *Service {
	s := &Service{
		repo:     deps.Repo,
		catalog:  deps.Catalog,
		lunches:  deps.Lunches,
		pairer:   deps.Pairer,
		clock:    deps.Clock,
		notifier: deps.Notifier,
		locker:   deps.Locker,
		log:      deps.Log,
	}
	if s.notifier == nil {
		s.notifier = notify.Nop()
	}
	if s.locker == nil {
		s.locker = lock.Nop()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Purchase adds a token package to the user's wallet for its diet, creating
// the wallet on first purchase. Validity is extended from the later of the
// current expiry and today.
func (s *Service) Purchase(ctx context.Context, userID, packageID string) (*Balance, error) {
	pkg, err := s.catalog.GetTokenPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.UserKey("curry", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	today := s.clock.Today()
	var result Wallet
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateWalletIfAbsent(ctx, &Wallet{
			ID:         uuid.NewString(),
			UserID:     userID,
			DietType:   pkg.DietType,
			ValidUntil: today,
		}); err != nil {
			return err
		}

		wallet, err := tx.GetWalletForUpdate(ctx, userID, pkg.DietType)
		if err != nil {
			return err
		}

		from := wallet.ValidUntil
		if from.Before(today) {
			from = today
		}
		wallet.TotalTokens += pkg.TokenCount
		wallet.ValidUntil = clock.AddDays(from, pkg.ValidityDays)

		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}
		result = *wallet
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Curry tokens added",
		fmt.Sprintf("%d %s tokens added, valid until %s.", pkg.TokenCount, pkg.DietType, clock.FormatDate(result.ValidUntil)))

	balance := s.balance(result, today)
	return &balance, nil
}

func (s *Service) ListWallets(ctx context.Context, userID string) ([]Balance, error) {
	wallets, err := s.repo.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	balances := make([]Balance, 0, len(wallets))
	for _, wallet := range wallets {
		balances = append(balances, s.balance(wallet, today))
	}
	return balances, nil
}

// PlaceOrder spends one token on a curry delivery. The debit and the order
// row commit together. Pairing with the day's lunch is attempted afterwards
// and never fails the order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*Order, error) {
	if input.DietType != catalog.DietVeg && input.DietType != catalog.DietNonVeg {
		return nil, ErrInvalidDietType
	}
	if input.CuisineType != catalog.CuisineSouth && input.CuisineType != catalog.CuisineNorth {
		return nil, ErrInvalidCuisineType
	}

	today := s.clock.Today()
	orderDate := clock.Normalize(input.OrderDate)
	if orderDate.Before(today) {
		return nil, ErrOrderDateInPast
	}

	slot, err := s.resolveSlot(ctx, input.DeliverySlotID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.UserKey("curry", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result Order
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		wallet, err := tx.GetWalletForUpdate(ctx, userID, input.DietType)
		if err != nil {
			return err
		}
		if wallet.IsExpired(today) {
			return ErrWalletExpired
		}

		exists, err := tx.HasActiveOrderOn(ctx, userID, orderDate)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateOrder
		}
		if wallet.RemainingTokens() < 1 {
			return ErrInsufficientTokens
		}

		debited, err := tx.DebitToken(ctx, wallet.ID)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientTokens
		}

		order := Order{
			ID:             uuid.NewString(),
			UserID:         userID,
			WalletID:       wallet.ID,
			CuisineType:    input.CuisineType,
			OrderDate:      orderDate,
			DeliverySlotID: slot.ID,
			Status:         StatusOrdered,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.GroupWithMeal {
		s.pairWithLunch(ctx, userID, &result)
	}

	s.notifier.Notify(ctx, userID, "Curry ordered",
		fmt.Sprintf("Your %s curry is booked for %s.", result.CuisineType, clock.FormatDate(result.OrderDate)))

	return &result, nil
}

// CancelOrder cancels an upcoming order and returns its token. The status
// change and the credit commit together.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	release, err := s.locker.Acquire(ctx, lock.UserKey("curry", userID))
	if err != nil {
		return nil, err
	}
	defer release()

	today := s.clock.Today()
	var result Order
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrOrderForbidden
		}
		if order.Status != StatusOrdered || order.OrderDate.Before(today) {
			return ErrOrderNotCancellable
		}

		changed, err := tx.TransitionOrder(ctx, order.ID, StatusOrdered, StatusCancelled)
		if err != nil {
			return err
		}
		if !changed {
			return ErrOrderNotCancellable
		}

		credited, err := tx.CreditToken(ctx, order.WalletID)
		if err != nil {
			return err
		}
		if !credited {
			return fmt.Errorf("%w: wallet %s", ErrLedgerMismatch, order.WalletID)
		}

		if order.DeliveryGroupID != nil {
			if err := tx.DetachOrder(ctx, order.ID, *order.DeliveryGroupID); err != nil {
				return err
			}
			order.DeliveryGroupID = nil
		}

		order.Status = StatusCancelled
		result = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "Curry order cancelled",
		fmt.Sprintf("Your curry for %s was cancelled and the token returned.", clock.FormatDate(result.OrderDate)))

	return &result, nil
}

// ListOrders lists the user's orders, newest date first. status filters when set.
func (s *Service) ListOrders(ctx context.Context, userID, status string) ([]Order, error) {
	if status == "" {
		return s.repo.ListOrders(ctx, userID, nil)
	}
	filter := OrderStatus(status)
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repo.ListOrders(ctx, userID, &filter)
}

func (s *Service) resolveSlot(ctx context.Context, slotID string) (*catalog.DeliverySlot, error) {
	if slotID != "" {
		return s.catalog.GetSlot(ctx, slotID)
	}
	return s.catalog.DefaultLunchSlot(ctx)
}

func (s *Service) pairWithLunch(ctx context.Context, userID string, order *Order) {
	if s.lunches == nil || s.pairer == nil {
		return
	}

	lunch, err := s.lunches.LunchFor(ctx, userID, order.OrderDate)
	if err != nil {
		s.log.Info("curry.place_order: no lunch to pair with", "user_id", userID, "order_id", order.ID, "reason", err.Error())
		return
	}

	group, err := s.pairer.Pair(ctx, userID, lunch.ID, order.ID)
	if err != nil {
		if apperr.IsCallerFault(err) {
			s.log.BusinessError("curry.place_order: pairing with lunch skipped", err, "user_id", userID, "order_id", order.ID, "meal_id", lunch.ID)
		} else {
			s.log.InternalError("curry.place_order: pairing with lunch failed", err, "user_id", userID, "order_id", order.ID, "meal_id", lunch.ID)
		}
		return
	}

	groupID := group.ID
	order.DeliveryGroupID = &groupID
	order.DeliverySlotID = group.DeliverySlotID
}

func (s *Service) balance(wallet Wallet, today time.Time) Balance {
	return Balance{
		Wallet:    wallet,
		Remaining: wallet.RemainingTokens(),
		Expired:   wallet.IsExpired(today),
	}
}
