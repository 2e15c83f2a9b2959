package rental

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"roomrental/internal/domain"
	"roomrental/internal/pkg/timeslot"
	"roomrental/internal/repository"

	"github.com/google/uuid"
)

var (
	phonePattern = regexp.MustCompile(`^09\d{8}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Service struct {
	requests  RequestRepository
	locations LocationRepository
	notifs    NotificationSender

	now func() time.Time
}

func NewService(requests RequestRepository, locations LocationRepository, notifs NotificationSender) *Service {
	return &Service{
		requests:  requests,
		locations: locations,
		notifs:    notifs,
		now:       time.Now,
	}
}

// Locations lists the bookable classrooms.
func (s *Service) Locations(ctx context.Context) ([]domain.Location, error) {
	return s.locations.List(ctx)
}

// AvailableSlots returns the slots still bookable for (location, date) in
// canonical day order. Past dates have no available slots; on the current
// date, slots whose start time has passed are excluded.
func (s *Service) AvailableSlots(ctx context.Context, location, dateStr string) ([]timeslot.Slot, error) {
	ok, err := s.locations.Exists(ctx, location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownLocation
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, ErrBadDate
	}

	now := s.now().UTC()
	today := timeslot.Midnight(now)
	if date.Before(today) {
		return []timeslot.Slot{}, nil
	}

	var elapsedToday []string
	var startedToday map[string]bool
	if date.Equal(today) {
		elapsedToday = timeslot.ElapsedIDs(now)
		startedToday = make(map[string]bool)
		for _, id := range timeslot.StartedIDs(now) {
			startedToday[id] = true
		}
	}

	occupiedIDs, err := s.requests.OccupiedSlotIDs(ctx, location, date, today, elapsedToday)
	if err != nil {
		return nil, err
	}
	occupied := make(map[string]bool, len(occupiedIDs))
	for _, id := range occupiedIDs {
		occupied[id] = true
	}

	out := make([]timeslot.Slot, 0, timeslot.PerDay())
	for _, slot := range timeslot.All() {
		if occupied[slot.ID] || startedToday[slot.ID] {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// FullyBookedDates returns the ISO dates on which every slot for the location
// is occupied, for greying out the client calendar.
func (s *Service) FullyBookedDates(ctx context.Context, location string) ([]string, error) {
	ok, err := s.locations.Exists(ctx, location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownLocation
	}

	now := s.now().UTC()
	today := timeslot.Midnight(now)

	dates, err := s.requests.FullyBookedDates(ctx, location, today, timeslot.ElapsedIDs(now), timeslot.PerDay())
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out, nil
}

// Submit validates the booking form and persists a pending request. Rules are
// checked in order and the first violation is reported; nothing is written or
// emitted on any failure path.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.RentalRequest, error) {
	location := strings.TrimSpace(req.Location)
	dateStr := strings.TrimSpace(req.Date)
	slotID := strings.TrimSpace(req.TimeSlot)
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	mail := strings.TrimSpace(req.Email)

	if location == "" || dateStr == "" || slotID == "" || name == "" || phone == "" {
		return nil, ErrMissingFields
	}

	ok, err := s.locations.Exists(ctx, location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownLocation
	}

	slot, ok := timeslot.ByID(slotID)
	if !ok {
		return nil, ErrUnknownSlot
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, ErrBadDate
	}

	now := s.now().UTC()
	today := timeslot.Midnight(now)
	if date.Before(today) {
		return nil, ErrPastDate
	}
	if date.Equal(today) && !slot.StartAt(today).After(now) {
		return nil, ErrSlotStarted
	}

	if !phonePattern.MatchString(phone) {
		return nil, ErrBadPhone
	}
	if mail == "" || !emailPattern.MatchString(mail) {
		return nil, ErrBadEmail
	}

	// Fast-path occupancy check for a friendly error; the unique index is
	// what actually prevents two submissions winning the same slot.
	var elapsedToday []string
	if date.Equal(today) {
		elapsedToday = timeslot.ElapsedIDs(now)
	}
	occupiedIDs, err := s.requests.OccupiedSlotIDs(ctx, location, date, today, elapsedToday)
	if err != nil {
		return nil, err
	}
	for _, id := range occupiedIDs {
		if id == slot.ID {
			return nil, ErrSlotTaken
		}
	}

	r := &domain.RentalRequest{
		Reference:   uuid.NewString(),
		Location:    location,
		Date:        date,
		TimeSlot:    slot.ID,
		Name:        name,
		Phone:       normalizePhone(phone),
		Email:       mail,
		Note:        strings.TrimSpace(req.Note),
		Status:      domain.RequestPending,
		SubmittedAt: now,
	}

	if err := s.requests.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyRequestSubmitted(ctx, r)
	}

	return r, nil
}

// GetByReference resolves a request by its public reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.RentalRequest, error) {
	r, err := s.requests.GetByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// normalizePhone renders a matched 09xxxxxxxx number as 0912-345-678.
func normalizePhone(p string) string {
	return fmt.Sprintf("%s-%s-%s", p[:4], p[4:7], p[7:])
}
