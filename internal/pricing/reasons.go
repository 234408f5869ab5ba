package pricing

// Reason codes are a closed, append-only vocabulary. They are persisted
// on every purchase for financial auditing: never rename or renumber.
const (
	ReasonCoversOpen          = "covers_open"
	ReasonCoversClosedDay     = "covers_closed_day_30_off"
	ReasonCoversPreopen3h     = "covers_preopen_3h_plus_30_off"
	ReasonCoversPreopen2to3h  = "covers_preopen_2_3h_10_off"
	ReasonCoversPreopenUnder2 = "covers_preopen_under_2h"
	ReasonCoversNoDP          = "covers_no_dp"

	ReasonMenuOpen          = "menu_open"
	ReasonMenuClosedDay     = "menu_closed_day_30_off"
	ReasonMenuPreopen3h     = "menu_preopen_3h_plus_30_off"
	ReasonMenuPreopenUnder3 = "menu_preopen_under_3h_10_off"
	ReasonMenuAfterClose    = "menu_after_close_30_off"
	ReasonMenuParentNoDP    = "menu_parent_no_dp"
	ReasonMenuVariantNoDP   = "menu_variant_no_dp"

	ReasonEvent48Plus     = "event_48_plus"
	ReasonEvent24to48     = "event_24_48"
	ReasonEventLastMinute = "event_last_minute"
	ReasonEventGrace      = "event_grace_period"
	ReasonEventExpired    = "event_expired"
	ReasonEventNoDP       = "event_no_dp"
	ReasonFreeTicket      = "free_ticket_no_dp"

	ReasonMenuEvent48Plus  = "menu_event_48_plus_30_off"
	ReasonMenuEvent24to48  = "menu_event_24_48"
	ReasonMenuEventUnder24 = "menu_event_under_24h"
	ReasonMenuEventOpen    = "menu_event_open_window"
)
