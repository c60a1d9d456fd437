package models

import (
	"time"

	"ravehub/internal/status"
)

type Event struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Country     string             `json:"country"`
	City        string             `json:"city"`
	Venue       string             `json:"venue"`
	StartAt     time.Time          `json:"start_at"`
	EndAt       time.Time          `json:"end_at"`
	Status      status.EventStatus `json:"status"`
	Zones       []Zone             `json:"zones"`
	SalesPhases []SalesPhase       `json:"sales_phases"`
	DJIDs       []string           `json:"dj_ids,omitempty"`

	// Ticket delivery configured per event: tickets can be released
	// immediately, held until a date, or handed out manually at the door.
	DeliveryMode        status.DeliveryMode `json:"ticket_delivery_mode"`
	DownloadAvailableAt *time.Time          `json:"download_available_at,omitempty"`
}

// Zone is a capacity bucket within a venue (e.g. general, vip).
type Zone struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// SalesPhase is a time-boxed pricing window with its own per-zone prices
// and stock counts.
type SalesPhase struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	StartAt time.Time    `json:"start_at"`
	EndAt   time.Time    `json:"end_at"`
	Prices  []PhasePrice `json:"prices"`
}

type PhasePrice struct {
	ZoneID string  `json:"zone_id"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
}

// CurrentPhase returns the sales phase whose window contains now, or nil
// when sales are closed.
func (e *Event) CurrentPhase(now time.Time) *SalesPhase {
	for i := range e.SalesPhases {
		p := &e.SalesPhases[i]
		if !now.Before(p.StartAt) && now.Before(p.EndAt) {
			return p
		}
	}
	return nil
}

// PriceFor returns the price entry of a zone within the phase.
func (p *SalesPhase) PriceFor(zoneID string) (PhasePrice, bool) {
	for _, pp := range p.Prices {
		if pp.ZoneID == zoneID {
			return pp, true
		}
	}
	return PhasePrice{}, false
}

type DJ struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Genre   string `json:"genre"`
	Country string `json:"country"`
	Bio     string `json:"bio,omitempty"`
}
