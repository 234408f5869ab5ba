package models

type OpenHour struct {
	Weekday string `json:"weekday"` // "Monday" .. "Sunday"
	Open    string `json:"open"`    // "HH:MM" civil time
	Close   string `json:"close"`   // "HH:MM"; numerically earlier than Open means next-day close
}

type Club struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OpenDays  []string   `json:"open_days"`
	OpenHours []OpenHour `json:"open_hours"`
	Active    bool       `json:"active"`
}

// WindowFor returns the configured hours for a weekday. A weekday listed
// in OpenDays without a matching OpenHours entry counts as closed.
func (c *Club) WindowFor(weekday string) (OpenHour, bool) {
	open := false
	for _, d := range c.OpenDays {
		if d == weekday {
			open = true
			break
		}
	}
	if !open {
		return OpenHour{}, false
	}
	for _, h := range c.OpenHours {
		if h.Weekday == weekday {
			return h, true
		}
	}
	return OpenHour{}, false
}
