package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEnrollmentFixture(t *testing.T, places int) (*EnrollmentService, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	fake.SeedWorkshop(model.Workshop{
		ID:       "w1",
		Name:     "Pottery",
		Date:     model.NewDate(2026, time.September, 12),
		Places:   places,
		Timeslot: model.TimeslotMorning,
	})
	fake.SeedParticipant(model.Participant{ID: "p1", Name: "Alice", Email: "alice@example.com"})
	fake.SeedParticipant(model.Participant{ID: "p2", Name: "Bob", Phone: "0601020304"})
	return NewEnrollmentService(fake, zap.NewNop()), fake
}

func TestEnrollDefaultsToOneSeat(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)

	enrollment, err := svc.Enroll(context.Background(), "w1", "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, enrollment.Seats)
}

func TestEnrollRejectsInvalidInput(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "", 1)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Enroll(ctx, "w1", "p1", -2)
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Enroll(ctx, "missing", "p1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Enroll(ctx, "w1", "missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrollRejectsOverCapacity(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 3)
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, "w1", "p2", 3)
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))

	// The rejected enrollment left no row behind.
	_, err = svc.Get(ctx, "w1", "p2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrollFillsWorkshopExactly(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 2)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "w1", "p2", 3)
	require.NoError(t, err)

	// 5 of 5 seats taken; one more is one too many.
	_, err = svc.Enroll(ctx, "w1", "p2", 4)
	assert.True(t, IsCapacityError(err))

	// Freeing one seat makes room for exactly one.
	seats, err := svc.SetSeats(ctx, "w1", "p2", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, seats)

	_, err = svc.Enroll(ctx, "w1", "p2", 3)
	require.NoError(t, err)
}

func TestReenrollReplacesSeatsAndKeepsPaidNotes(t *testing.T) {
	svc, fake := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 2)
	require.NoError(t, err)
	require.NoError(t, svc.SetPaid(ctx, "w1", "p1", true))
	require.NoError(t, svc.SetNotes(ctx, "w1", "p1", "front row"))

	// Re-enrolling the same pair replaces the count, never duplicates.
	enrollment, err := svc.Enroll(ctx, "w1", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, enrollment.Seats)
	assert.True(t, enrollment.Paid)
	assert.Equal(t, "front row", enrollment.Notes)

	enrollments, err := fake.ListEnrollments(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 4, enrollments[0].Seats)
}

func TestEnrollUnenrollRoundTrip(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Unenroll(ctx, "w1", "p1"))

	enrollments, err := svc.List(ctx, "w1")
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	// A second delete of the same pair reports not found.
	assert.ErrorIs(t, svc.Unenroll(ctx, "w1", "p1"), store.ErrNotFound)
}

func TestSetSeatsAppliesDelta(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 2)
	require.NoError(t, err)

	seats, err := svc.SetSeats(ctx, "w1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, seats)

	seats, err = svc.SetSeats(ctx, "w1", "p1", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, seats)
}

func TestSetSeatsNeverDropsBelowOne(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 1)
	require.NoError(t, err)

	// Decrementing at one seat stays at one; removal goes through Unenroll.
	seats, err := svc.SetSeats(ctx, "w1", "p1", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, seats)
}

func TestSetSeatsRejectionLeavesStateUnchanged(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 2)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "w1", "p2", 2)
	require.NoError(t, err)

	_, err = svc.SetSeats(ctx, "w1", "p1", 2)
	require.Error(t, err)
	assert.True(t, IsCapacityError(err))

	current, err := svc.Get(ctx, "w1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, current.Seats)
}

func TestSetNotesCapsLength(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "w1", "p1", 1)
	require.NoError(t, err)

	var validationErr *ValidationError
	err = svc.SetNotes(ctx, "w1", "p1", strings.Repeat("x", maxNoteLength+1))
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, svc.SetNotes(ctx, "w1", "p1", strings.Repeat("x", maxNoteLength)))
}

func TestListRequiresExistingWorkshop(t *testing.T) {
	svc, _ := newEnrollmentFixture(t, 5)

	_, err := svc.List(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
