package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"club-commerce/internal/services"
	"club-commerce/models"
)

type PricingHandler struct {
	app    *pocketbase.PocketBase
	pricer *services.PricingService
}

func NewPricingHandler(app *pocketbase.PocketBase, pricer *services.PricingService) *PricingHandler {
	return &PricingHandler{
		app:    app,
		pricer: pricer,
	}
}

type quoteReq struct {
	ClubID     string `json:"club_id"`
	Kind       string `json:"kind"`
	ItemID     string `json:"item_id"`
	VariantID  string `json:"variant_id"`
	TargetDate string `json:"target_date"` // "2006-01-02"
}

// Quote - Preview the current price of one item. Previews are
// non-binding; checkout re-prices at its own instant.
func (h *PricingHandler) Quote(e *core.RequestEvent) error {
	var req quoteReq
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return apis.NewBadRequestError("Invalid target date", err)
	}

	line := models.CartLine{
		ClubID:     req.ClubID,
		Kind:       models.CartKind(req.Kind),
		ItemID:     req.ItemID,
		VariantID:  req.VariantID,
		TargetDate: targetDate,
		Quantity:   1,
	}
	quote, err := h.pricer.QuoteLine(e.Request.Context(), line, time.Now())
	if err != nil {
		return apis.NewBadRequestError("Cannot quote item", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"base_price": quote.BasePrice,
		"price":      quote.Quote.Price,
		"reason":     quote.Quote.Reason,
		"blocked":    quote.Quote.Blocked,
	})
}
