package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/service"
	"github.com/go-chi/chi/v5"
)

// ParticipantHandler holds the HTTP handlers for the participant directory.
type ParticipantHandler struct {
	svc *service.ParticipantService
}

// NewParticipantHandler constructs a ParticipantHandler.
func NewParticipantHandler(svc *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{svc: svc}
}

// List handles GET /participants?q=
// Returns the directory, filtered by a case-insensitive name substring when
// q is present.
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// Create handles POST /participants
// Reuses the existing participant on a case-insensitive name match (200);
// otherwise creates one (201), which requires an email or phone.
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	participant, created, err := h.svc.FindOrCreate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, participant)
}

// Enrollments handles GET /participants/{id}/enrollments
func (h *ParticipantHandler) Enrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.svc.Enrollments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if enrollments == nil {
		enrollments = []model.EnrollmentWithWorkshop{}
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// Update handles PATCH /participants/{id}
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	participant, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}
