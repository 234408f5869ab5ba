package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/internal/services"
	"club-commerce/internal/status"
	"club-commerce/models"
)

type CartHandler struct {
	app   *pocketbase.PocketBase
	carts *services.CartService
}

func NewCartHandler(app *pocketbase.PocketBase, carts *services.CartService) *CartHandler {
	return &CartHandler{
		app:   app,
		carts: carts,
	}
}

// identity resolves the buyer identity: the auth record when logged in,
// the X-Session-Id header otherwise.
func identity(e *core.RequestEvent) (string, error) {
	if e.Auth != nil {
		return models.Identity(e.Auth.Id, ""), nil
	}
	if sid := e.Request.Header.Get("X-Session-Id"); sid != "" {
		return models.Identity("", sid), nil
	}
	return "", apis.NewUnauthorizedError("Missing session", nil)
}

// GetCart - List the buyer's cart lines
func (h *CartHandler) GetCart(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}

	lines, err := h.carts.Lines(e.Request.Context(), id)
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"lines": lines})
}

type addLineReq struct {
	ClubID     string `json:"club_id"`
	Kind       string `json:"kind"`
	ItemID     string `json:"item_id"`
	VariantID  string `json:"variant_id"`
	TargetDate string `json:"target_date"` // "2006-01-02"
	Quantity   int    `json:"quantity"`
}

// AddLine - Add an item to the cart
func (h *CartHandler) AddLine(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}

	var req addLineReq
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Quantity <= 0 {
		return apis.NewBadRequestError("Quantity must be positive", nil)
	}
	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return apis.NewBadRequestError("Invalid target date", err)
	}

	line := &models.CartLine{
		Identity:   id,
		ClubID:     req.ClubID,
		Kind:       models.CartKind(req.Kind),
		ItemID:     req.ItemID,
		VariantID:  req.VariantID,
		TargetDate: targetDate,
		Quantity:   req.Quantity,
	}
	if err := h.carts.AddLine(e.Request.Context(), line); err != nil {
		return cartError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"line": line})
}

// UpdateLine - Change a cart line's quantity
func (h *CartHandler) UpdateLine(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Quantity <= 0 {
		return apis.NewBadRequestError("Quantity must be positive", nil)
	}

	lineID := e.Request.PathValue("lineId")
	if err := h.carts.UpdateQuantity(e.Request.Context(), id, lineID, req.Quantity); err != nil {
		return cartError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "updated"})
}

// ClearCart - Drop every line in the cart
func (h *CartHandler) ClearCart(e *core.RequestEvent) error {
	id, err := identity(e)
	if err != nil {
		return err
	}

	if err := h.carts.Clear(e.Request.Context(), id); err != nil {
		return cartError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "cleared"})
}

func cartError(err error) error {
	switch {
	case errors.Is(err, status.ErrCheckoutInProgress):
		return apis.NewApiError(http.StatusConflict, "A checkout is already in progress", err)
	case errors.Is(err, status.ErrMixedCart),
		errors.Is(err, status.ErrMixedClubCart),
		errors.Is(err, status.ErrInactiveItem),
		errors.Is(err, status.ErrInsufficientQty):
		return apis.NewBadRequestError(err.Error(), nil)
	default:
		return apis.NewInternalServerError("internal error", err)
	}
}
