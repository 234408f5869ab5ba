package models

import (
	"time"
)

type CartKind string

const (
	CartTicket CartKind = "ticket"
	CartMenu   CartKind = "menu"
)

// Identity is either an authenticated user id or an anonymous session
// id, never both.
func Identity(userID, sessionID string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "session:" + sessionID
}

type CartLine struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	ClubID     string    `json:"club_id"`
	Kind       CartKind  `json:"kind"`
	ItemID     string    `json:"item_id"`
	VariantID  string    `json:"variant_id,omitempty"`
	TargetDate time.Time `json:"target_date"` // civil date
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}
