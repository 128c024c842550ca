// Package model defines the core domain types for the workshop booking admin.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Timeslot is the part of the day a workshop runs in. The stored values
// match the production schema, which predates this service.
type Timeslot string

const (
	TimeslotMorning   Timeslot = "matin"
	TimeslotAfternoon Timeslot = "après-midi"
	TimeslotEvening   Timeslot = "soir"
)

// Valid reports whether t is one of the known timeslots.
func (t Timeslot) Valid() bool {
	switch t {
	case TimeslotMorning, TimeslotAfternoon, TimeslotEvening:
		return true
	}
	return false
}

// Date is a calendar day without time-of-day semantics. It marshals as
// "2006-01-02", the format both the date input and the store use.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as a "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02"; a longer timestamp is truncated to its
// date part so rows stored with a time component still decode.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Workshop is a scheduled, capacity-limited event participants book seats in.
type Workshop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        Date      `json:"date"`
	Places      int       `json:"places"`
	Timeslot    Timeslot  `json:"timeslot"`
	Description string    `json:"description,omitempty"`
	ShopID      string    `json:"shop_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Participant is a person in the directory, reachable by email or phone.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment associates one participant to one workshop. The pair
// (WorkshopID, ParticipantID) is its identity; at most one row exists per
// pair.
type Enrollment struct {
	WorkshopID    string `json:"workshop_id"`
	ParticipantID string `json:"participant_id"`
	Seats         int    `json:"seats"`
	Paid          bool   `json:"paid"`
	Notes         string `json:"notes,omitempty"`
}

// EnrollmentWithParticipant is an enrollment enriched with a snapshot of the
// participant record, as returned by list queries.
type EnrollmentWithParticipant struct {
	Enrollment
	Participant Participant `json:"participant"`
}

// EnrollmentWithWorkshop is an enrollment enriched with a snapshot of its
// workshop, for the per-participant view.
type EnrollmentWithWorkshop struct {
	Enrollment
	Workshop Workshop `json:"workshop"`
}

// Shop is a partition label for workshops.
type Shop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReservedSeats sums the seats across enrollments.
func ReservedSeats(enrollments []Enrollment) int {
	total := 0
	for _, e := range enrollments {
		total += e.Seats
	}
	return total
}

// RemainingSeats returns the workshop's capacity minus its reserved seats.
// A negative result means the stored data is oversold; callers surface that
// as a data-integrity warning rather than failing.
func RemainingSeats(w Workshop, enrollments []Enrollment) int {
	return w.Places - ReservedSeats(enrollments)
}
