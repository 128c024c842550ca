package postgrest

import (
	"time"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
)

// Row types mirror the remote columns, including their nullability. They are
// decoded here and converted to model types before leaving the package.

type workshopRow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Date        model.Date `json:"date"`
	Places      int        `json:"places"`
	Timeslot    *string    `json:"timeslot"`
	Description *string    `json:"description"`
	ShopID      *string    `json:"shop_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r workshopRow) toModel() model.Workshop {
	timeslot := model.TimeslotMorning
	if r.Timeslot != nil && *r.Timeslot != "" {
		timeslot = model.Timeslot(*r.Timeslot)
	}
	return model.Workshop{
		ID:          r.ID,
		Name:        r.Name,
		Date:        r.Date,
		Places:      r.Places,
		Timeslot:    timeslot,
		Description: deref(r.Description),
		ShopID:      deref(r.ShopID),
		CreatedAt:   r.CreatedAt,
	}
}

type participantRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (r participantRow) toModel() model.Participant {
	return model.Participant{
		ID:        r.ID,
		Name:      r.Name,
		Email:     deref(r.Email),
		Phone:     deref(r.Phone),
		CreatedAt: r.CreatedAt,
	}
}

type enrollmentRow struct {
	WorkshopID    string  `json:"workshop_id"`
	ParticipantID string  `json:"participant_id"`
	// Rows created before seat counts existed have NULL places and mean one
	// seat.
	Places *int    `json:"places"`
	Paid   bool    `json:"paid"`
	Notes  *string `json:"notes"`
	// Embedded resources from participants(...)/workshops(...) select
	// expressions.
	Participant *participantRow `json:"participants"`
	Workshop    *workshopRow    `json:"workshops"`
}

func (r enrollmentRow) toModel() model.Enrollment {
	seats := 1
	if r.Places != nil {
		seats = *r.Places
	}
	return model.Enrollment{
		WorkshopID:    r.WorkshopID,
		ParticipantID: r.ParticipantID,
		Seats:         seats,
		Paid:          r.Paid,
		Notes:         deref(r.Notes),
	}
}

type shopRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullable returns nil for empty strings so optional columns stay NULL in
// the remote table instead of collecting empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
