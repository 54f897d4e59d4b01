package meals

import "tiffin-app-go/internal/apperr"

var (
	ErrMealNotFound     = apperr.NotFound("meal_not_found", "meal not found")
	ErrMealForbidden    = apperr.Forbidden("meal_forbidden", "meal does not belong to your active subscription")
	ErrMealNotInPackage = apperr.NotFound("meal_not_in_package", "meal type is not included in your package")
	ErrNoMealsOnDate    = apperr.NotFound("no_meals_on_date", "your subscription does not cover this date")
	ErrInvalidMealType  = apperr.Validation("invalid_meal_type", "meal type must be breakfast, lunch, dinner, snacks or all")
	ErrOutsideWindow    = apperr.Validation("date_outside_window", "meals can only be changed for today or tomorrow")
	ErrCutoffPassed     = apperr.DeadlineExceeded("cutoff_passed", "changes for today close at 20:00")
	ErrAlreadyPaused    = apperr.AlreadyPaused("meal_already_paused", "meal is already paused")
	ErrMealGrouped      = apperr.Conflict("meal_grouped", "meal is part of a delivery group; ungroup it first")
	ErrMealPaused       = apperr.Conflict("meal_paused", "meal is paused")
)
