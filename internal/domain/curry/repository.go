package curry

import (
	"context"
	"time"

	"tiffin-app-go/internal/domain/catalog"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	// CreateWalletIfAbsent inserts wallet unless one exists for its user and diet.
	CreateWalletIfAbsent(ctx context.Context, wallet *Wallet) error
	GetWalletForUpdate(ctx context.Context, userID string, dietType catalog.DietType) (*Wallet, error)
	UpdateWallet(ctx context.Context, wallet *Wallet) error
	// DebitToken uses one token if any remain and reports whether it did.
	DebitToken(ctx context.Context, walletID string) (bool, error)
	// CreditToken returns one used token and reports whether it did.
	CreditToken(ctx context.Context, walletID string) (bool, error)
	ListWallets(ctx context.Context, userID string) ([]Wallet, error)

	HasActiveOrderOn(ctx context.Context, userID string, date time.Time) (bool, error)
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderForUpdate(ctx context.Context, orderID string) (*Order, error)
	TransitionOrder(ctx context.Context, orderID string, from, to OrderStatus) (bool, error)
	// DetachOrder removes the order from its delivery group and dissolves
	// the group when fewer than two members remain.
	DetachOrder(ctx context.Context, orderID, groupID string) error
	ListOrders(ctx context.Context, userID string, status *OrderStatus) ([]Order, error)
}
