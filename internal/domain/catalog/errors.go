package catalog

import "tiffin-app-go/internal/apperr"

var (
	ErrPackageNotFound      = apperr.NotFound("package_not_found", "package not found")
	ErrSlotNotFound         = apperr.NotFound("delivery_slot_not_found", "delivery slot not found")
	ErrTokenPackageNotFound = apperr.NotFound("token_package_not_found", "token package not found")
	ErrUpgradePriceNotFound = apperr.NotFound("upgrade_price_not_found", "no price configured for this upgrade")
	ErrAddressNotFound      = apperr.NotFound("address_not_found", "address not found")
	ErrSlotNotConfigured    = apperr.Configuration("delivery_slot_not_configured", "no active delivery slot configured for meal type")
)
