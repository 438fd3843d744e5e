package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
)

func scenarioResponses() []models.Response {
	return []models.Response{
		{ID: 1, Name: "Alice", Availability: models.Availability{"2024-06-01": {models.SlotLunch}}},
		{ID: 2, Name: "Bob", Availability: models.Availability{
			"2024-06-01": {models.SlotLunch, models.SlotDinner},
			"2024-06-02": {models.SlotDinner},
		}},
	}
}

func TestComputeDateCountsScenario(t *testing.T) {
	event := sampleEvent()
	counts := ComputeDateCounts(event.HostDates, scenarioResponses())
	assert.Equal(t, []dto.DateCount{
		{Date: "2024-06-01", Count: 2},
		{Date: "2024-06-02", Count: 1},
	}, counts)

	best, highest := BestDates(counts)
	assert.Equal(t, []string{"2024-06-01"}, best)
	assert.Equal(t, 2, highest)
}

func TestComputeDateCountsBoundsAndPurity(t *testing.T) {
	hostDates := []string{"2024-06-03", "2024-06-01", "2024-06-02", "2024-06-01"}
	responses := []models.Response{
		{Name: "A", Availability: models.Availability{"2024-06-01": {}, "2024-06-03": {models.SlotAllDay}}},
		{Name: "B", Availability: models.Availability{"2024-06-09": {models.SlotLunch}}},
		{Name: "C"},
	}

	first := ComputeDateCounts(hostDates, responses)
	second := ComputeDateCounts(hostDates, responses)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "2024-06-01", first[0].Date)
	assert.Equal(t, 0, first[0].Count, "an empty slot list is not availability")
	for _, c := range first {
		assert.GreaterOrEqual(t, c.Count, 0)
		assert.LessOrEqual(t, c.Count, len(responses))
	}
}

func TestBestDatesTieReturnsAllAscending(t *testing.T) {
	responses := []models.Response{
		{Name: "Alice", Availability: models.Availability{"2024-06-02": {models.SlotLunch}}},
		{Name: "Bob", Availability: models.Availability{"2024-06-01": {models.SlotLunch}}},
	}
	best, highest := BestDates(ComputeDateCounts([]string{"2024-06-02", "2024-06-01"}, responses))
	assert.Equal(t, []string{"2024-06-01", "2024-06-02"}, best)
	assert.Equal(t, 1, highest)
}

func TestBestDatesNoWinner(t *testing.T) {
	best, highest := BestDates(ComputeDateCounts([]string{"2024-06-01", "2024-06-02"}, nil))
	assert.Nil(t, best)
	assert.Zero(t, highest)

	best, _ = BestDates(nil)
	assert.Nil(t, best)
}

func TestFormatSummaryScenario(t *testing.T) {
	expected := "📅 Dinner - Availability Summary\n" +
		"\n" +
		"Sat, Jun 1:\n" +
		"  • Alice: ☀️ Lunch\n" +
		"  • Bob: ☀️ Lunch, 🌙 Dinner\n" +
		"\n" +
		"Sun, Jun 2:\n" +
		"  • Bob: 🌙 Dinner\n" +
		"\n" +
		"✨ Best date: Sat, Jun 1 (2/2 available)"
	assert.Equal(t, expected, FormatSummary(sampleEvent(), scenarioResponses()))
}

func TestFormatSummarySkipsEmptyDatesAndPluralisesTies(t *testing.T) {
	event := sampleEvent()
	event.HostDates = models.DateList{"2024-06-03", "2024-06-01", "2024-06-02"}
	responses := []models.Response{
		{Name: "Zed", Availability: models.Availability{"2024-06-01": {models.SlotDinner, models.SlotLunch}}},
		{Name: "Amy", Availability: models.Availability{"2024-06-03": {models.SlotAllDay}, "2024-06-02": {}}},
	}

	summary := FormatSummary(event, responses)
	assert.NotContains(t, summary, "Sun, Jun 2")
	assert.Contains(t, summary, "  • Zed: ☀️ Lunch, 🌙 Dinner")
	assert.Contains(t, summary, "  • Amy: 🎉 All Day")
	assert.Contains(t, summary, "✨ Best dates: Sat, Jun 1, Mon, Jun 3 (1/2 available)")
}

func TestFormatSummaryKeepsCreationOrder(t *testing.T) {
	event := sampleEvent()
	responses := []models.Response{
		{Name: "Zed", Availability: models.Availability{"2024-06-01": {models.SlotLunch}}},
		{Name: "Amy", Availability: models.Availability{"2024-06-01": {models.SlotLunch}}},
	}
	summary := FormatSummary(event, responses)
	assert.Less(t, strings.Index(summary, "Zed"), strings.Index(summary, "Amy"))
	assert.Equal(t, summary, FormatSummary(event, responses))
}

func TestFormatSummaryWithoutWinner(t *testing.T) {
	event := sampleEvent()
	assert.Equal(t, "📅 Dinner - Availability Summary", FormatSummary(event, nil))

	responses := []models.Response{{Name: "Alice", Availability: models.Availability{"2024-06-01": {}}}}
	summary := FormatSummary(event, responses)
	assert.Equal(t, "📅 Dinner - Availability Summary", summary)
	assert.NotContains(t, summary, "Best")
}

func TestBuildResults(t *testing.T) {
	responses := scenarioResponses()
	responses[1].PlusOne = strPtr("Carol")

	results := BuildResults(sampleEvent(), responses)
	assert.Equal(t, 2, results.TotalResponses)
	assert.Equal(t, 1, results.PlusOnes)
	assert.Equal(t, 3, results.GuestCount)
	assert.Equal(t, []string{"2024-06-01"}, results.BestDates)
	assert.Equal(t, 2, results.BestCount)

	require.Len(t, results.Dates, 2)
	assert.Equal(t, dto.ResultDate{Date: "2024-06-01", Label: "Sat, Jun 1", Count: 2, IsBest: true}, results.Dates[0])
	assert.False(t, results.Dates[1].IsBest)

	require.Len(t, results.Respondents, 2)
	alice := results.Respondents[0]
	assert.Equal(t, "Alice", alice.Name)
	require.Len(t, alice.Cells, 2)
	assert.Equal(t, []models.TimeSlot{models.SlotLunch}, alice.Cells[0].Slots)
	assert.Empty(t, alice.Cells[1].Slots)

	require.Len(t, results.Event.TimeSlots, 2)
	assert.Equal(t, "Lunch", results.Event.TimeSlots[0].Label)
}

func TestBuildResultsWithoutResponses(t *testing.T) {
	results := BuildResults(sampleEvent(), nil)
	assert.NotNil(t, results.BestDates)
	assert.Empty(t, results.BestDates)
	assert.Zero(t, results.GuestCount)
	assert.Len(t, results.Dates, 2)
}
