package dto

import (
	"time"

	"github.com/noah-isme/whenfree-api/internal/models"
)

// CreateEventRequest is the host's payload for a new event.
type CreateEventRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Location    string            `json:"location" validate:"max=200"`
	Description string            `json:"description" validate:"max=2000"`
	AdminCode   string            `json:"admin_code" validate:"required,len=4,number"`
	HostDates   []string          `json:"host_dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	TimeSlots   []models.TimeSlot `json:"time_slots" validate:"required,min=1"`
}

// CreateEventResult carries the identifier of the created event.
type CreateEventResult struct {
	ID string `json:"id"`
}

// PublicEvent is what participants holding the share link may see.
type PublicEvent struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Location    *string          `json:"location"`
	Description *string          `json:"description"`
	HostDates   []string         `json:"host_dates"`
	TimeSlots   []TimeSlotOption `json:"time_slots"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TimeSlotOption describes one selectable slot.
type TimeSlotOption struct {
	ID    models.TimeSlot `json:"id"`
	Label string          `json:"label"`
	Emoji string          `json:"emoji"`
	Hours string          `json:"hours"`
}

// VerifyAdminCodeRequest carries a guess at the admin code. A blank code is
// checked like any other and simply fails to match.
type VerifyAdminCodeRequest struct {
	Code string `json:"code"`
}

// VerifyAdminCodeResult reports whether the code matched.
type VerifyAdminCodeResult struct {
	Valid bool `json:"valid"`
}

// SubmitResponseRequest is a participant's availability.
type SubmitResponseRequest struct {
	Name         string                       `json:"name" validate:"required,max=100"`
	PlusOne      string                       `json:"plus_one" validate:"max=100"`
	Availability map[string][]models.TimeSlot `json:"availability"`
}

// UpdateEventRequest edits an event's details; the admin code is re-checked every time.
type UpdateEventRequest struct {
	AdminCode   string `json:"admin_code"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// MutationResult is returned by admin mutations so callers can render a
// failure inline instead of treating it as a crash.
type MutationResult struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Code       string `json:"code,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// ShareLink is the link and ready-to-paste invitation for an event.
type ShareLink struct {
	URL     string    `json:"url"`
	Message string    `json:"message"`
	ReplyBy time.Time `json:"reply_by"`
}

// DateCount is the number of respondents available on one host date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// EventResults is the aggregated availability grid shown to the host.
type EventResults struct {
	Event          PublicEvent     `json:"event"`
	Dates          []ResultDate    `json:"dates"`
	Respondents    []RespondentRow `json:"respondents"`
	BestDates      []string        `json:"best_dates"`
	BestCount      int             `json:"best_count"`
	TotalResponses int             `json:"total_responses"`
	PlusOnes       int             `json:"plus_ones"`
	GuestCount     int             `json:"guest_count"`
}

// ResultDate is one column of the grid.
type ResultDate struct {
	Date   string `json:"date"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	IsBest bool   `json:"is_best"`
}

// RespondentRow is one participant's row of the grid.
type RespondentRow struct {
	Name    string           `json:"name"`
	PlusOne *string          `json:"plus_one"`
	Cells   []RespondentCell `json:"cells"`
}

// RespondentCell is the participant's selection on one date.
type RespondentCell struct {
	Date  string            `json:"date"`
	Slots []models.TimeSlot `json:"slots"`
}

// ExportLinkRequest asks for a signed download link.
type ExportLinkRequest struct {
	Format string `json:"format"`
}

// ExportLink is a short-lived link a browser can follow without sending the admin code.
type ExportLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}
