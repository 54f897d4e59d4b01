package curry

import (
	"errors"

	"tiffin-app-go/internal/apperr"
)

var (
	ErrWalletNotFound      = apperr.NotFound("wallet_not_found", "no curry tokens for this diet type")
	ErrWalletExpired       = apperr.Expired("wallet_expired", "curry tokens have expired")
	ErrInsufficientTokens  = apperr.InsufficientTokens("insufficient_tokens", "no curry tokens left")
	ErrDuplicateOrder      = apperr.StateConflict("order_exists_for_date", "a curry order already exists for this date")
	ErrOrderNotFound       = apperr.NotFound("order_not_found", "curry order not found")
	ErrOrderForbidden      = apperr.Forbidden("order_forbidden", "curry order belongs to another user")
	ErrOrderNotCancellable = apperr.StateConflict("order_not_cancellable", "only upcoming orders that are still placed can be cancelled")
	ErrOrderDateInPast     = apperr.Validation("order_date_in_past", "order date cannot be in the past")
	ErrInvalidDietType     = apperr.Validation("invalid_diet_type", "diet type must be veg or nonveg")
	ErrInvalidCuisineType  = apperr.Validation("invalid_cuisine_type", "cuisine type must be south or north")
	ErrInvalidStatus       = apperr.Validation("invalid_order_status", "unknown order status")

	// ErrLedgerMismatch means a credit found no token to return. The
	// surrounding transaction is rolled back.
	ErrLedgerMismatch = errors.New("curry wallet ledger mismatch")
)
