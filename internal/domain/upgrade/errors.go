package upgrade

import "tiffin-app-go/internal/apperr"

var (
	ErrUpgradeNotFound      = apperr.NotFound("upgrade_not_found", "upgrade not found")
	ErrUpgradeForbidden     = apperr.Forbidden("upgrade_forbidden", "upgrade belongs to another user")
	ErrNoActiveSubscription = apperr.Unprocessable("no_active_subscription", "an active subscription is required for upgrades")
	ErrUpgradeNotAllowed    = apperr.Unprocessable("upgrade_not_allowed", "your package does not allow this upgrade")
	ErrUpgradeStarted       = apperr.StateConflict("upgrade_started", "upgrades cannot be removed once they have started")
	ErrUpgradeOverlap       = apperr.Conflict("upgrade_overlap", "an upgrade of this type already covers these dates")
	ErrInvalidUpgradeType   = apperr.Validation("invalid_upgrade_type", "upgrade type must be veg_to_nonveg or south_to_north")
	ErrInvalidScope         = apperr.Validation("invalid_scope", "scope must be meal, day or week")
	ErrMealTypeRequired     = apperr.Validation("meal_type_required", "meal type is required for meal scope")
	ErrMealTypeNotAllowed   = apperr.Validation("meal_type_not_allowed", "meal type is only allowed for meal scope")
	ErrMealNotInPackage     = apperr.Validation("meal_not_in_package", "meal type is not included in your package")
	ErrInvalidRange         = apperr.Validation("invalid_date_range", "end date must not be before start date")
	ErrOutsideSubscription  = apperr.Validation("outside_subscription", "upgrade dates must fall within your subscription")
	ErrStartDateInPast      = apperr.Validation("start_date_in_past", "upgrade cannot start in the past")
)
