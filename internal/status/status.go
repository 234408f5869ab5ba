package status

import "errors"

var (
	// Checkout validation failures. Surfaced as 4xx responses.
	ErrEmptyCart       = errors.New("cart: cart is empty")
	ErrMixedCart       = errors.New("cart: ticket and menu carts cannot be mixed")
	ErrMixedClubCart   = errors.New("cart: all lines must target the same club and date")
	ErrStaleCart       = errors.New("cart: cart is older than the allowed checkout window")
	ErrInactiveItem    = errors.New("cart: item is no longer available")
	ErrBelowMinimum    = errors.New("checkout: total is below the minimum transaction amount")
	ErrUnsupportedPay  = errors.New("checkout: unsupported payment method")
	ErrEventExpired    = errors.New("pricing: event sales window has closed")
	ErrInsufficientQty = errors.New("checkout: insufficient ticket stock")

	// Concurrency conflict. Surfaced as a 409.
	ErrCheckoutInProgress = errors.New("checkout: another checkout is already in progress")

	// Redemption conflict. Surfaced as a 409.
	ErrAlreadyRedeemed = errors.New("redeem: purchase already redeemed")

	// Gateway failures.
	ErrGatewayDeclined = errors.New("gateway: payment declined")
	ErrRefNotFound     = errors.New("gateway: transaction reference not found")
)
