package models

import "time"

// AdminCodeLength is the fixed number of digits in an event's admin code.
const AdminCodeLength = 4

// Event is a gathering with host-proposed candidate dates.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Location    *string   `db:"location" json:"location"`
	Description *string   `db:"description" json:"description"`
	AdminCode   string    `db:"admin_code" json:"-"`
	HostDates   DateList  `db:"host_dates" json:"host_dates"`
	TimeSlots   SlotList  `db:"time_slots" json:"time_slots"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Response is one participant's availability for an event, unique per (event, name).
type Response struct {
	ID           int64        `db:"id" json:"id"`
	EventID      string       `db:"event_id" json:"event_id"`
	Name         string       `db:"name" json:"name"`
	PlusOne      *string      `db:"plus_one" json:"plus_one"`
	Availability Availability `db:"availability" json:"availability"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// HasPlusOne reports whether the participant brings a guest.
func (r Response) HasPlusOne() bool {
	return r.PlusOne != nil && *r.PlusOne != ""
}

// EventWithResponses bundles an event with its responses in creation order.
type EventWithResponses struct {
	Event     Event      `json:"event"`
	Responses []Response `json:"responses"`
}

// EventDetails holds the fields a host may edit after creation.
type EventDetails struct {
	Title       string
	Location    *string
	Description *string
}
