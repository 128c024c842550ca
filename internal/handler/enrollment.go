package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/service"
	"github.com/go-chi/chi/v5"
)

// EnrollmentHandler holds the HTTP handlers for workshop enrollments.
type EnrollmentHandler struct {
	svc *service.EnrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc}
}

// List handles GET /workshops/{id}/enrollments
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.svc.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if enrollments == nil {
		enrollments = []model.EnrollmentWithParticipant{}
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// Enroll handles POST /workshops/{id}/enrollments
// Enrolling an already-enrolled participant replaces the seat count.
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req model.EnrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	enrollment, err := h.svc.Enroll(r.Context(), chi.URLParam(r, "id"), req.ParticipantID, req.Seats)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

// Update handles PATCH /workshops/{id}/enrollments/{participantID}
//
// Exactly one of seats_delta, paid, or notes must be set: the admin UI edits
// one field at a time, and requiring that here keeps a failed update from
// being partially applied.
func (h *EnrollmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEnrollmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	set := 0
	for _, present := range []bool{req.SeatsDelta != nil, req.Paid != nil, req.Notes != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, "set exactly one of seats_delta, paid, notes")
		return
	}

	workshopID := chi.URLParam(r, "id")
	participantID := chi.URLParam(r, "participantID")

	var err error
	switch {
	case req.SeatsDelta != nil:
		_, err = h.svc.SetSeats(r.Context(), workshopID, participantID, *req.SeatsDelta)
	case req.Paid != nil:
		err = h.svc.SetPaid(r.Context(), workshopID, participantID, *req.Paid)
	case req.Notes != nil:
		err = h.svc.SetNotes(r.Context(), workshopID, participantID, *req.Notes)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	enrollment, err := h.svc.Get(r.Context(), workshopID, participantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// Unenroll handles DELETE /workshops/{id}/enrollments/{participantID}
// Destructive and not undoable; the UI must ask the user to confirm before
// calling this.
func (h *EnrollmentHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Unenroll(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
