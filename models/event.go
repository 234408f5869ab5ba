package models

import (
	"time"
)

type Event struct {
	ID            string    `json:"id"`
	ClubID        string    `json:"club_id"`
	Name          string    `json:"name"`
	AvailableDate time.Time `json:"available_date"` // civil date, time-of-day carries no intent
	OpenTime      string    `json:"open_time"`      // optional "HH:MM" overriding the club schedule
	CloseTime     string    `json:"close_time"`     // optional "HH:MM"
	Active        bool      `json:"active"`
}

// HasOwnWindow reports whether the event overrides the club's regular
// schedule with its own open/close hours.
func (e *Event) HasOwnWindow() bool {
	return e.OpenTime != "" && e.CloseTime != ""
}
