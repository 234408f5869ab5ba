package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/internal/services"
	"club-commerce/internal/status"
)

type CheckoutHandler struct {
	app      *pocketbase.PocketBase
	checkout *services.CheckoutService
}

func NewCheckoutHandler(app *pocketbase.PocketBase, checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		app:      app,
		checkout: checkout,
	}
}

// Initiate - Start a checkout for the buyer's cart
func (h *CheckoutHandler) Initiate(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}

	var req services.CheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.Identity = id
	if req.Email == "" && e.Auth != nil {
		req.Email = e.Auth.Email()
	}

	result, err := h.checkout.Initiate(e.Request.Context(), &req)
	if err != nil {
		return checkoutError(err)
	}
	return e.JSON(http.StatusOK, result)
}

// Status - Report the phase of a checkout attempt
func (h *CheckoutHandler) Status(e *core.RequestEvent) error {
	reference := e.Request.PathValue("reference")

	session, err := h.checkout.GetStatus(e.Request.Context(), reference)
	if err != nil {
		return apis.NewNotFoundError("Checkout not found", nil)
	}
	return e.JSON(http.StatusOK, session)
}

// Purchases - List the purchases of an approved checkout
func (h *CheckoutHandler) Purchases(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}
	reference := e.Request.PathValue("reference")

	purchases, err := h.checkout.Purchases(e.Request.Context(), id, reference)
	if err != nil {
		return apis.NewNotFoundError("Checkout not found", nil)
	}
	return e.JSON(http.StatusOK, map[string]any{"purchases": purchases})
}

type redeemReq struct {
	Payload string `json:"payload"`
}

// Redeem - Consume a QR payload at the door
func (h *CheckoutHandler) Redeem(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req redeemReq
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	claims, purchase, err := h.checkout.Redeem(e.Request.Context(), req.Payload)
	if err != nil {
		if errors.Is(err, status.ErrAlreadyRedeemed) {
			return apis.NewApiError(http.StatusConflict, "Code already used", nil)
		}
		slog.Error("redeem failed", "error", err)
		return apis.NewBadRequestError("Invalid code", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"type":     claims.Type,
		"purchase": purchase,
	})
}

func checkoutError(err error) error {
	switch {
	case errors.Is(err, status.ErrCheckoutInProgress):
		return apis.NewApiError(http.StatusConflict, "A checkout is already in progress", err)
	case errors.Is(err, status.ErrEmptyCart),
		errors.Is(err, status.ErrMixedCart),
		errors.Is(err, status.ErrMixedClubCart),
		errors.Is(err, status.ErrStaleCart),
		errors.Is(err, status.ErrInactiveItem),
		errors.Is(err, status.ErrBelowMinimum),
		errors.Is(err, status.ErrEventExpired),
		errors.Is(err, status.ErrInsufficientQty):
		return apis.NewBadRequestError(err.Error(), nil)
	default:
		return apis.NewInternalServerError("internal error", err)
	}
}
