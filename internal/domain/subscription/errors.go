package subscription

import "tiffin-app-go/internal/apperr"

var (
	ErrSubscriptionNotFound     = apperr.NotFound("subscription_not_found", "no active subscription")
	ErrActiveSubscriptionExists = apperr.Conflict("active_subscription_exists", "an active subscription already exists")
	ErrInvalidContainer         = apperr.Validation("invalid_container", "container type is not allowed for this package")
	ErrStartDateInPast          = apperr.Validation("start_date_in_past", "start date cannot be in the past")
)
