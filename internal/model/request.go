package model

// CreateWorkshopRequest is the payload for creating a workshop.
type CreateWorkshopRequest struct {
	Name        string `json:"name"`
	Date        Date   `json:"date"`
	Places      int    `json:"places"`
	Timeslot    string `json:"timeslot"`
	Description string `json:"description"`
	ShopID      string `json:"shop_id"`
}

// UpdateWorkshopRequest is a partial update of a workshop. Nil fields are
// left untouched.
type UpdateWorkshopRequest struct {
	Name        *string `json:"name"`
	Date        *Date   `json:"date"`
	Places      *int    `json:"places"`
	Timeslot    *string `json:"timeslot"`
	Description *string `json:"description"`
}

// EnrollRequest is the payload for enrolling a participant in a workshop.
// A zero Seats value defaults to one seat.
type EnrollRequest struct {
	ParticipantID string `json:"participant_id"`
	Seats         int    `json:"seats"`
}

// UpdateEnrollmentRequest is a partial update of an enrollment. SeatsDelta
// is applied to the current seat count rather than replacing it.
type UpdateEnrollmentRequest struct {
	SeatsDelta *int    `json:"seats_delta"`
	Paid       *bool   `json:"paid"`
	Notes      *string `json:"notes"`
}

// CreateParticipantRequest is the payload for the directory's
// find-or-create operation.
type CreateParticipantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateParticipantRequest is a partial update of a participant's
// name/email/phone. Nil fields are left untouched.
type UpdateParticipantRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// WorkshopSummary is a workshop enriched with derived seat counts for list
// views.
type WorkshopSummary struct {
	Workshop
	Reserved  int  `json:"reserved"`
	Remaining int  `json:"remaining"`
	Oversold  bool `json:"oversold,omitempty"`
}

// WorkshopDetail is a workshop with its enrollments and derived seat counts.
type WorkshopDetail struct {
	Workshop
	Enrollments []EnrollmentWithParticipant `json:"enrollments"`
	Reserved    int                         `json:"reserved"`
	Remaining   int                         `json:"remaining"`
	Oversold    bool                        `json:"oversold,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
