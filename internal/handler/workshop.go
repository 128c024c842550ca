package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/Shivanand-hulikatti/workshop-admin/internal/service"
	"github.com/go-chi/chi/v5"
)

// WorkshopHandler holds the HTTP handlers for workshops and shops.
type WorkshopHandler struct {
	svc *service.WorkshopService
}

// NewWorkshopHandler constructs a WorkshopHandler.
func NewWorkshopHandler(svc *service.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{svc: svc}
}

// Create handles POST /workshops
func (h *WorkshopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWorkshopRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	workshop, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workshop)
}

// List handles GET /workshops?shop_id=
// Returns workshops enriched with reserved and remaining seat counts.
func (h *WorkshopHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.List(r.Context(), r.URL.Query().Get("shop_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if summaries == nil {
		summaries = []model.WorkshopSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /workshops/{id}
func (h *WorkshopHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if detail.Enrollments == nil {
		detail.Enrollments = []model.EnrollmentWithParticipant{}
	}
	writeJSON(w, http.StatusOK, detail)
}

// Update handles PATCH /workshops/{id}
// A capacity reduction below the reserved seat total is rejected with 409.
func (h *WorkshopHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateWorkshopRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	workshop, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

// Shops handles GET /shops
func (h *WorkshopHandler) Shops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.svc.Shops(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if shops == nil {
		shops = []model.Shop{}
	}
	writeJSON(w, http.StatusOK, shops)
}
