package delivery

import "tiffin-app-go/internal/apperr"

var (
	ErrTooFewMembers   = apperr.Validation("too_few_members", "a delivery group needs at least two items")
	ErrPastDate        = apperr.Validation("delivery_date_in_past", "cannot group deliveries in the past")
	ErrMemberNotFound  = apperr.NotFound("delivery_item_not_found", "meal or curry order not found")
	ErrGroupNotFound   = apperr.NotFound("delivery_group_not_found", "delivery group not found")
	ErrMemberForbidden = apperr.Forbidden("delivery_item_forbidden", "meal or curry order belongs to another user")
	ErrGroupForbidden  = apperr.Forbidden("delivery_group_forbidden", "delivery group belongs to another user")
	ErrMixedDates      = apperr.Conflict("delivery_dates_differ", "all items in a group must be delivered on the same date")
	ErrMemberPaused    = apperr.Conflict("delivery_item_paused", "paused meals cannot be grouped")
	ErrMemberGrouped   = apperr.Conflict("delivery_item_grouped", "item is already part of a delivery group")
	ErrMemberInactive  = apperr.Conflict("delivery_item_inactive", "cancelled orders cannot be grouped")
)
