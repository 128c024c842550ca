package postgrest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI routes requests by method and table, so a test can script the
// remote tables' responses and count the writes that reach them.
type stubAPI struct {
	responses map[string]string // "METHOD table" -> JSON body
	writes    int
}

func (s *stubAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writes++
		}
		table := r.URL.Path[len("/rest/v1/"):]
		body, ok := s.responses[r.Method+" "+table]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no stub"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func newStubStore(t *testing.T, api *stubAPI) *Store {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewStore(NewClient(srv.URL, "key"))
}

func TestGetWorkshopDecodesNullableColumns(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"GET workshops": `[{
			"id": "w1", "name": "Pottery", "date": "2026-09-12",
			"places": 5, "timeslot": null, "description": null,
			"shop_id": null, "created_at": "2026-01-01T00:00:00Z"
		}]`,
	}})

	w, err := st.GetWorkshop(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Pottery", w.Name)
	assert.Equal(t, "2026-09-12", w.Date.String())
	// NULL timeslot rows predate the column and mean morning.
	assert.Equal(t, model.TimeslotMorning, w.Timeslot)
	assert.Empty(t, w.Description)
}

func TestGetWorkshopNotFound(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"GET workshops": `[]`,
	}})

	_, err := st.GetWorkshop(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListEnrollmentsDecodesEmbeddedParticipant(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"GET workshops_participants": `[
			{"workshop_id": "w1", "participant_id": "p1", "places": 2,
			 "paid": true, "notes": "front row",
			 "participants": {"id": "p1", "name": "Alice",
			                  "email": "alice@example.com", "phone": null,
			                  "created_at": "2026-01-01T00:00:00Z"}},
			{"workshop_id": "w1", "participant_id": "p2", "places": null,
			 "paid": false, "notes": null,
			 "participants": {"id": "p2", "name": "Bob", "email": null,
			                  "phone": null, "created_at": "2026-01-01T00:00:00Z"}}
		]`,
	}})

	enrollments, err := st.ListEnrollments(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)

	assert.Equal(t, 2, enrollments[0].Seats)
	assert.True(t, enrollments[0].Paid)
	assert.Equal(t, "Alice", enrollments[0].Participant.Name)

	// NULL places on rows that predate seat counts means one seat.
	assert.Equal(t, 1, enrollments[1].Seats)
	assert.Equal(t, "Bob", enrollments[1].Participant.Name)
}

func TestListParticipantEnrollmentsDecodesEmbeddedWorkshop(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"GET workshops_participants": `[
			{"workshop_id": "w1", "participant_id": "p1", "places": 2,
			 "paid": false, "notes": null,
			 "workshops": {"id": "w1", "name": "Pottery", "date": "2026-09-12",
			               "places": 5, "timeslot": "soir",
			               "created_at": "2026-01-01T00:00:00Z"}}
		]`,
	}})

	enrollments, err := st.ListParticipantEnrollments(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 2, enrollments[0].Seats)
	assert.Equal(t, "Pottery", enrollments[0].Workshop.Name)
	assert.Equal(t, model.TimeslotEvening, enrollments[0].Workshop.Timeslot)
}

func TestUpsertEnrollmentRejectsOverCapacityWithoutWriting(t *testing.T) {
	api := &stubAPI{responses: map[string]string{
		"GET workshops": `[{"id": "w1", "name": "Pottery", "date": "2026-09-12",
			"places": 3, "timeslot": "matin", "created_at": "2026-01-01T00:00:00Z"}]`,
		"GET workshops_participants": `[
			{"workshop_id": "w1", "participant_id": "p1", "places": 3, "paid": false}
		]`,
	}}
	st := newStubStore(t, api)

	err := st.UpsertEnrollment(context.Background(), model.Enrollment{
		WorkshopID: "w1", ParticipantID: "p2", Seats: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrCapacityExceeded)
	assert.Zero(t, api.writes)
}

func TestUpsertEnrollmentExcludesOwnRowFromCapacityCheck(t *testing.T) {
	api := &stubAPI{responses: map[string]string{
		"GET workshops": `[{"id": "w1", "name": "Pottery", "date": "2026-09-12",
			"places": 3, "timeslot": "matin", "created_at": "2026-01-01T00:00:00Z"}]`,
		"GET workshops_participants": `[
			{"workshop_id": "w1", "participant_id": "p1", "places": 2, "paid": false}
		]`,
		"POST workshops_participants": `[{"workshop_id": "w1", "participant_id": "p1",
			"places": 3, "paid": false}]`,
	}}
	st := newStubStore(t, api)

	// p1 grows from 2 to 3 seats; its own 2 seats do not count against it.
	err := st.UpsertEnrollment(context.Background(), model.Enrollment{
		WorkshopID: "w1", ParticipantID: "p1", Seats: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.writes)
}

func TestUpdateEnrollmentNotFound(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"PATCH workshops_participants": `[]`,
	}})

	paid := true
	err := st.UpdateEnrollment(context.Background(), "w1", "missing",
		store.EnrollmentPatch{Paid: &paid})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteEnrollmentMissingPair(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{
		"GET workshops_participants": `[]`,
	}})

	err := st.DeleteEnrollment(context.Background(), "w1", "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateWorkshopCapacityGuard(t *testing.T) {
	api := &stubAPI{responses: map[string]string{
		"GET workshops_participants": `[
			{"workshop_id": "w1", "participant_id": "p1", "places": 4, "paid": false}
		]`,
	}}
	st := newStubStore(t, api)

	places := 3
	err := st.UpdateWorkshop(context.Background(), "w1", store.WorkshopPatch{Places: &places})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrCapacityExceeded)
	assert.Zero(t, api.writes)
}

func TestStoreWrapsTransportFailures(t *testing.T) {
	st := newStubStore(t, &stubAPI{responses: map[string]string{}})

	_, err := st.ListShops(context.Background())
	require.Error(t, err)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}
