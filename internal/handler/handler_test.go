package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/service"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store/storetest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer wires the fake store through the services and handlers onto
// a router with the real route layout, minus auth.
func newTestServer(t *testing.T) (*chi.Mux, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	log := zap.NewNop()

	workshopHandler := NewWorkshopHandler(service.NewWorkshopService(fake, log))
	participantHandler := NewParticipantHandler(service.NewParticipantService(fake, log))
	enrollmentHandler := NewEnrollmentHandler(service.NewEnrollmentService(fake, log))

	r := chi.NewRouter()
	r.Get("/health", HealthCheck)
	r.Get("/workshops", workshopHandler.List)
	r.Post("/workshops", workshopHandler.Create)
	r.Get("/workshops/{id}", workshopHandler.Get)
	r.Patch("/workshops/{id}", workshopHandler.Update)
	r.Get("/workshops/{id}/enrollments", enrollmentHandler.List)
	r.Post("/workshops/{id}/enrollments", enrollmentHandler.Enroll)
	r.Patch("/workshops/{id}/enrollments/{participantID}", enrollmentHandler.Update)
	r.Delete("/workshops/{id}/enrollments/{participantID}", enrollmentHandler.Unenroll)
	r.Get("/participants", participantHandler.List)
	r.Get("/participants/{id}/enrollments", participantHandler.Enrollments)
	r.Post("/participants", participantHandler.Create)
	r.Patch("/participants/{id}", participantHandler.Update)
	r.Get("/shops", workshopHandler.Shops)
	return r, fake
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seedWorkshop(fake *storetest.Fake, id string, places int) {
	fake.SeedWorkshop(model.Workshop{
		ID:       id,
		Name:     "Pottery",
		Date:     model.NewDate(2026, time.September, 12),
		Places:   places,
		Timeslot: model.TimeslotMorning,
	})
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateWorkshopEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doJSON(t, r, http.MethodPost, "/workshops", map[string]any{
		"name":   "Pottery",
		"date":   "2026-09-12",
		"places": 8,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[model.Workshop](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 8, created.Places)

	// Validation failures come back as 400 with an error envelope.
	rec = doJSON(t, r, http.MethodPost, "/workshops", map[string]any{"date": "2026-09-12"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody[model.ErrorResponse](t, rec).Error)
}

func TestCreateWorkshopRejectsUnknownFields(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doJSON(t, r, http.MethodPost, "/workshops", map[string]any{
		"name":     "Pottery",
		"date":     "2026-09-12",
		"places":   8,
		"capacity": 8,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWorkshopsEmptyIsArray(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doJSON(t, r, http.MethodGet, "/workshops", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetWorkshopDetail(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 5)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedEnrollment(model.Enrollment{WorkshopID: "w1", ParticipantID: "p1", Seats: 2})

	rec := doJSON(t, r, http.MethodGet, "/workshops/w1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decodeBody[model.WorkshopDetail](t, rec)
	assert.Equal(t, 2, detail.Reserved)
	assert.Equal(t, 3, detail.Remaining)
	require.Len(t, detail.Enrollments, 1)

	rec = doJSON(t, r, http.MethodGet, "/workshops/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollEndpointStatuses(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 3)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedParticipant(model.Participant{ID: "p2", Name: "Bob"})

	rec := doJSON(t, r, http.MethodPost, "/workshops/w1/enrollments", map[string]any{
		"participant_id": "p1",
		"seats":          2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Over capacity: 409.
	rec = doJSON(t, r, http.MethodPost, "/workshops/w1/enrollments", map[string]any{
		"participant_id": "p2",
		"seats":          2,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown participant: 404.
	rec = doJSON(t, r, http.MethodPost, "/workshops/w1/enrollments", map[string]any{
		"participant_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollmentPatchRequiresExactlyOneField(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 5)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedEnrollment(model.Enrollment{WorkshopID: "w1", ParticipantID: "p1", Seats: 1})

	// Zero fields.
	rec := doJSON(t, r, http.MethodPatch, "/workshops/w1/enrollments/p1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Two fields.
	rec = doJSON(t, r, http.MethodPatch, "/workshops/w1/enrollments/p1", map[string]any{
		"paid":  true,
		"notes": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// One field returns the updated enrollment.
	rec = doJSON(t, r, http.MethodPatch, "/workshops/w1/enrollments/p1", map[string]any{
		"seats_delta": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeBody[model.Enrollment](t, rec).Seats)

	rec = doJSON(t, r, http.MethodPatch, "/workshops/w1/enrollments/p1", map[string]any{
		"paid": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[model.Enrollment](t, rec).Paid)
}

func TestUnenrollEndpoint(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 5)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedEnrollment(model.Enrollment{WorkshopID: "w1", ParticipantID: "p1", Seats: 1})

	rec := doJSON(t, r, http.MethodDelete, "/workshops/w1/enrollments/p1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/workshops/w1/enrollments/p1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParticipantFindOrCreateStatuses(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doJSON(t, r, http.MethodPost, "/participants", map[string]any{
		"name":  "Alice",
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[model.Participant](t, rec)

	// Same name, different case: reuse with 200.
	rec = doJSON(t, r, http.MethodPost, "/participants", map[string]any{"name": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBody[model.Participant](t, rec).ID)

	// New name without contact info: 400.
	rec = doJSON(t, r, http.MethodPost, "/participants", map[string]any{"name": "Bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParticipantSearchEndpoint(t *testing.T) {
	r, fake := newTestServer(t)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedParticipant(model.Participant{ID: "p2", Name: "Bob"})

	rec := doJSON(t, r, http.MethodGet, "/participants?q=ali", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody[[]model.Participant](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].Name)
}

func TestParticipantEnrollmentsEndpoint(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 5)
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice"})
	fake.SeedEnrollment(model.Enrollment{WorkshopID: "w1", ParticipantID: "p1", Seats: 2})

	rec := doJSON(t, r, http.MethodGet, "/participants/p1/enrollments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	enrollments := decodeBody[[]model.EnrollmentWithWorkshop](t, rec)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Pottery", enrollments[0].Workshop.Name)

	rec = doJSON(t, r, http.MethodGet, "/participants/missing/enrollments", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailureMapsToBadGateway(t *testing.T) {
	r, fake := newTestServer(t)
	fake.ForcedErr = &store.StoreError{Op: "list workshops", Err: errors.New("connection refused")}

	rec := doJSON(t, r, http.MethodGet, "/workshops", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "record store unavailable", decodeBody[model.ErrorResponse](t, rec).Error)
}

func TestWorkshopCapacityReductionConflict(t *testing.T) {
	r, fake := newTestServer(t)
	seedWorkshop(fake, "w1", 5)
	fake.SeedEnrollment(model.Enrollment{WorkshopID: "w1", ParticipantID: "p1", Seats: 4})

	rec := doJSON(t, r, http.MethodPatch, "/workshops/w1", map[string]any{"places": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
