package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
)

func TestSubmitResponseUpsertKeepsLatestOnly(t *testing.T) {
	svc := newTestServices(sampleEvent())
	ctx := context.Background()

	first, err := svc.responses.SubmitResponse(ctx, "ip", "evt123abcd", dto.SubmitResponseRequest{
		Name:         "Alice",
		Availability: map[string][]models.TimeSlot{"2024-06-01": {models.SlotLunch}},
	})
	require.NoError(t, err)

	second, err := svc.responses.SubmitResponse(ctx, "ip", "evt123abcd", dto.SubmitResponseRequest{
		Name:         " Alice ",
		PlusOne:      "Sam",
		Availability: map[string][]models.TimeSlot{"2024-06-02": {models.SlotDinner}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.store.ListByEvent(ctx, "evt123abcd")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Alice", stored[0].Name)
	assert.Equal(t, models.Availability{"2024-06-02": {models.SlotDinner}}, stored[0].Availability)
	require.NotNil(t, stored[0].PlusOne)
	assert.Equal(t, "Sam", *stored[0].PlusOne)
}

func TestSubmitResponseAppliesAllDayExclusivity(t *testing.T) {
	event := sampleEvent()
	event.TimeSlots = models.SlotList{models.SlotBreakfast, models.SlotLunch, models.SlotDinner, models.SlotAllDay}
	svc := newTestServices(event)

	resp, err := svc.responses.SubmitResponse(context.Background(), "ip", event.ID, dto.SubmitResponseRequest{
		Name: "Bob",
		Availability: map[string][]models.TimeSlot{
			"2024-06-01": {models.SlotLunch, models.SlotAllDay},
			"2024-06-02": {models.SlotAllDay, models.SlotDinner, models.SlotBreakfast},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.TimeSlot{models.SlotAllDay}, resp.Availability["2024-06-01"])
	assert.Equal(t, []models.TimeSlot{models.SlotBreakfast, models.SlotDinner}, resp.Availability["2024-06-02"])
}

func TestSubmitResponseKeepsEmptyDates(t *testing.T) {
	svc := newTestServices(sampleEvent())
	resp, err := svc.responses.SubmitResponse(context.Background(), "ip", "evt123abcd", dto.SubmitResponseRequest{
		Name:         "Carol",
		Availability: map[string][]models.TimeSlot{"2024-06-01": {}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Availability.AvailableOn("2024-06-01"))
}

func TestSubmitResponseRejectsInvalidInput(t *testing.T) {
	svc := newTestServices(sampleEvent())
	ctx := context.Background()

	cases := map[string]dto.SubmitResponseRequest{
		"blank name":        {Name: "  "},
		"unknown date":      {Name: "A", Availability: map[string][]models.TimeSlot{"2024-07-01": {models.SlotLunch}}},
		"slot not offered":  {Name: "A", Availability: map[string][]models.TimeSlot{"2024-06-01": {models.SlotBreakfast}}},
		"unknown slot name": {Name: "A", Availability: map[string][]models.TimeSlot{"2024-06-01": {"teatime"}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.responses.SubmitResponse(ctx, "ip-"+name, "evt123abcd", req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
	assert.Empty(t, svc.store.responses)
}

func TestSubmitResponseMissingEvent(t *testing.T) {
	svc := newTestServices()
	_, err := svc.responses.SubmitResponse(context.Background(), "ip", "missing", dto.SubmitResponseRequest{Name: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitResponseRateLimited(t *testing.T) {
	svc := newTestServices(sampleEvent())
	ctx := context.Background()
	req := dto.SubmitResponseRequest{Name: "Spam"}
	for i := 0; i < 30; i++ {
		_, err := svc.responses.SubmitResponse(ctx, "ip", "evt123abcd", req)
		require.NoError(t, err)
	}
	_, err := svc.responses.SubmitResponse(ctx, "ip", "evt123abcd", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErrors.FromError(err).Code)
}

func TestDeleteResponse(t *testing.T) {
	svc := newTestServices(sampleEvent())
	ctx := context.Background()
	_, err := svc.responses.SubmitResponse(ctx, "ip", "evt123abcd", dto.SubmitResponseRequest{Name: "Alice"})
	require.NoError(t, err)

	result, err := svc.responses.DeleteResponse(ctx, "ip", "evt123abcd", "0000", "Alice")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, result.Code)
	assert.Len(t, svc.store.responses, 1)

	result, err = svc.responses.DeleteResponse(ctx, "ip", "evt123abcd", "1234", "Alice")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, svc.store.responses)
}

func TestDeleteResponseUnknownNameIsNoop(t *testing.T) {
	svc := newTestServices(sampleEvent())
	result, err := svc.responses.DeleteResponse(context.Background(), "ip", "evt123abcd", "1234", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, dto.MutationResult{Success: true}, result)
}
