package timeslot

import "time"

// Slot is one of the three fixed daily rental windows. ID is the stable
// machine identifier used in the API and the database; Label is the
// display form shown on the booking form.
type Slot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	StartHour int    `json:"-"`
	EndHour   int    `json:"-"`
}

var daySlots = []Slot{
	{ID: "09:00-12:00", Label: "09:00–12:00", StartHour: 9, EndHour: 12},
	{ID: "13:00-16:00", Label: "13:00–16:00", StartHour: 13, EndHour: 16},
	{ID: "18:00-21:00", Label: "18:00–21:00", StartHour: 18, EndHour: 21},
}

// All returns the daily slots in canonical order.
func All() []Slot {
	out := make([]Slot, len(daySlots))
	copy(out, daySlots)
	return out
}

// ByID looks up a slot by its canonical identifier.
func ByID(id string) (Slot, bool) {
	for _, s := range daySlots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// PerDay is the number of bookable slots per location per day.
func PerDay() int { return len(daySlots) }

// StartAt returns the slot's start time on the given day.
func (s Slot) StartAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.StartHour, 0, 0, 0, day.Location())
}

// EndAt returns the slot's end time on the given day.
func (s Slot) EndAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.EndHour, 0, 0, 0, day.Location())
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartedIDs returns the ids of slots whose start time is at or before now,
// relative to now's own day. A slot cannot be booked once it has started.
func StartedIDs(now time.Time) []string {
	day := Midnight(now)
	var out []string
	for _, s := range daySlots {
		if !s.StartAt(day).After(now) {
			out = append(out, s.ID)
		}
	}
	return out
}

// ElapsedIDs returns the ids of slots whose end time is at or before now,
// relative to now's own day. An approved request for such a slot no longer
// occupies the calendar.
func ElapsedIDs(now time.Time) []string {
	day := Midnight(now)
	var out []string
	for _, s := range daySlots {
		if !s.EndAt(day).After(now) {
			out = append(out, s.ID)
		}
	}
	return out
}
