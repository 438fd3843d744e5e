package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/noah-isme/whenfree-api/internal/models"
	"github.com/noah-isme/whenfree-api/pkg/download"
	"github.com/noah-isme/whenfree-api/pkg/ratelimit"
)

// fakeStore keeps events and responses in memory with the same conflict
// rule as the database: one response per (event, name).
type fakeStore struct {
	mu        sync.Mutex
	events    map[string]*models.Event
	responses []models.Response
	nextID    int64
	err       error
}

func newFakeStore(events ...models.Event) *fakeStore {
	store := &fakeStore{events: make(map[string]*models.Event)}
	for i := range events {
		ev := events[i]
		store.events[ev.ID] = &ev
	}
	return store
}

func (f *fakeStore) Create(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if event.ID == "" {
		event.ID = "evt0000001"
	}
	event.CreatedAt = time.Now().UTC()
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeStore) FindAdminCode(ctx context.Context, id string) (string, error) {
	ev, err := f.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return ev.AdminCode, nil
}

func (f *fakeStore) UpdateDetails(ctx context.Context, id string, details models.EventDetails) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return false, nil
	}
	ev.Title = details.Title
	ev.Location = details.Location
	ev.Description = details.Description
	return true, nil
}

func (f *fakeStore) Upsert(ctx context.Context, response *models.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	now := time.Now().UTC()
	for i := range f.responses {
		existing := &f.responses[i]
		if existing.EventID == response.EventID && existing.Name == response.Name {
			existing.PlusOne = response.PlusOne
			existing.Availability = response.Availability
			existing.UpdatedAt = now
			response.ID = existing.ID
			response.CreatedAt = existing.CreatedAt
			response.UpdatedAt = now
			return nil
		}
	}
	f.nextID++
	response.ID = f.nextID
	response.CreatedAt = now
	response.UpdatedAt = now
	f.responses = append(f.responses, *response)
	return nil
}

func (f *fakeStore) ListByEvent(ctx context.Context, eventID string) ([]models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Response{}
	for _, r := range f.responses {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteByName(ctx context.Context, eventID, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	kept := f.responses[:0]
	var removed int64
	for _, r := range f.responses {
		if r.EventID == eventID && r.Name == name {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.responses = kept
	return removed, nil
}

func strPtr(s string) *string { return &s }

func sampleEvent() models.Event {
	return models.Event{
		ID:        "evt123abcd",
		Title:     "Dinner",
		AdminCode: "1234",
		HostDates: models.DateList{"2024-06-01", "2024-06-02"},
		TimeSlots: models.SlotList{models.SlotLunch, models.SlotDinner},
		CreatedAt: time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC),
	}
}

// testServices wires the services the way the API binary does, over one fake store.
type testServices struct {
	store     *fakeStore
	limiter   *ratelimit.Limiter
	guard     *AccessGuard
	events    *EventService
	responses *ResponseService
	results   *ResultsService
}

func newTestServices(events ...models.Event) *testServices {
	store := newFakeStore(events...)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
	policies := ratelimit.DefaultPolicies()
	metrics := NewMetricsService()
	guard := NewAccessGuard(store, limiter, policies.VerifyCode, metrics, nil)
	signer, err := download.NewSigner("test-secret", time.Minute)
	if err != nil {
		panic(err)
	}
	eventSvc := NewEventService(store, store, guard, limiter, metrics, nil, nil, EventServiceConfig{
		PublicBaseURL: "https://whenfree.example/",
		Policy:        policies.CreateEvent,
	})
	return &testServices{
		store:     store,
		limiter:   limiter,
		guard:     guard,
		events:    eventSvc,
		responses: NewResponseService(store, store, guard, limiter, policies.SubmitResponse, metrics, nil, nil),
		results:   NewResultsService(eventSvc, guard, nil, signer, nil),
	}
}
