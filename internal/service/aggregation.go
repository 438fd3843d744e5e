package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
)

// DateLabelLayout renders a host date the way summaries and grids show it, e.g. "Sat, Jun 1".
const DateLabelLayout = "Mon, Jan 2"

// ComputeDateCounts returns one entry per distinct host date in ascending
// order, counting the responses with at least one slot on that date.
func ComputeDateCounts(hostDates []string, responses []models.Response) []dto.DateCount {
	dates := models.DateList(hostDates).Sorted()
	counts := make([]dto.DateCount, 0, len(dates))
	for _, date := range dates {
		count := 0
		for _, r := range responses {
			if r.Availability.AvailableOn(date) {
				count++
			}
		}
		counts = append(counts, dto.DateCount{Date: date, Count: count})
	}
	return counts
}

// BestDates returns every date sharing the highest count, ascending, plus that
// count. When nobody is available anywhere there is no winner and dates is nil.
func BestDates(counts []dto.DateCount) ([]string, int) {
	highest := 0
	for _, c := range counts {
		if c.Count > highest {
			highest = c.Count
		}
	}
	if highest == 0 {
		return nil, 0
	}
	var dates []string
	for _, c := range counts {
		if c.Count == highest {
			dates = append(dates, c.Date)
		}
	}
	return dates, highest
}

// FormatDateLabel turns "2024-06-01" into "Sat, Jun 1". Unparseable input is returned unchanged.
func FormatDateLabel(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(DateLabelLayout)
}

// FormatSummary renders the copy-paste availability digest for a group chat.
// Names under a date keep the order of responses, which callers load by creation time.
func FormatSummary(event models.Event, responses []models.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s - Availability Summary", event.Title)
	if len(responses) == 0 {
		return b.String()
	}

	counts := ComputeDateCounts(event.HostDates, responses)
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s:", FormatDateLabel(c.Date))
		for _, r := range responses {
			if !r.Availability.AvailableOn(c.Date) {
				continue
			}
			fmt.Fprintf(&b, "\n  • %s: %s", r.Name, displaySlots(r.Availability[c.Date]))
		}
	}

	best, highest := BestDates(counts)
	if len(best) > 0 {
		labels := make([]string, len(best))
		for i, date := range best {
			labels[i] = FormatDateLabel(date)
		}
		noun := "Best date"
		if len(best) > 1 {
			noun = "Best dates"
		}
		fmt.Fprintf(&b, "\n\n✨ %s: %s (%d/%d available)", noun, strings.Join(labels, ", "), highest, len(responses))
	}
	return b.String()
}

// BuildResults assembles the host's grid: one column per host date, one row per respondent.
func BuildResults(event models.Event, responses []models.Response) dto.EventResults {
	counts := ComputeDateCounts(event.HostDates, responses)
	best, highest := BestDates(counts)
	bestSet := make(map[string]struct{}, len(best))
	for _, date := range best {
		bestSet[date] = struct{}{}
	}

	dates := make([]dto.ResultDate, 0, len(counts))
	for _, c := range counts {
		_, isBest := bestSet[c.Date]
		dates = append(dates, dto.ResultDate{
			Date:   c.Date,
			Label:  FormatDateLabel(c.Date),
			Count:  c.Count,
			IsBest: isBest,
		})
	}

	plusOnes := 0
	rows := make([]dto.RespondentRow, 0, len(responses))
	for _, r := range responses {
		if r.HasPlusOne() {
			plusOnes++
		}
		cells := make([]dto.RespondentCell, 0, len(counts))
		for _, c := range counts {
			cells = append(cells, dto.RespondentCell{
				Date:  c.Date,
				Slots: models.UnionOf(r.Availability[c.Date]).Slots(),
			})
		}
		rows = append(rows, dto.RespondentRow{Name: r.Name, PlusOne: r.PlusOne, Cells: cells})
	}

	if best == nil {
		best = []string{}
	}
	return dto.EventResults{
		Event:          toPublicEvent(event),
		Dates:          dates,
		Respondents:    rows,
		BestDates:      best,
		BestCount:      highest,
		TotalResponses: len(responses),
		PlusOnes:       plusOnes,
		GuestCount:     len(responses) + plusOnes,
	}
}

func displaySlots(slots []models.TimeSlot) string {
	ordered := models.UnionOf(slots).Slots()
	parts := make([]string, len(ordered))
	for i, s := range ordered {
		parts[i] = s.Display()
	}
	return strings.Join(parts, ", ")
}

func toPublicEvent(event models.Event) dto.PublicEvent {
	options := make([]dto.TimeSlotOption, 0, len(event.TimeSlots))
	for _, s := range models.UnionOf(event.TimeSlots).Slots() {
		options = append(options, dto.TimeSlotOption{ID: s, Label: s.Label(), Emoji: s.Emoji(), Hours: s.Hours()})
	}
	return dto.PublicEvent{
		ID:          event.ID,
		Title:       event.Title,
		Location:    event.Location,
		Description: event.Description,
		HostDates:   event.HostDates.Sorted(),
		TimeSlots:   options,
		CreatedAt:   event.CreatedAt,
	}
}
