package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"roomrental/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateSlot is returned when an insert loses the race for a slot:
	// the partial unique index on (location, date, time_slot) already holds a
	// pending or approved request.
	ErrDuplicateSlot = errors.New("slot already occupied")

	ErrNotFound = errors.New("record not found")
)

type RentalRequestRepository struct {
	db *gorm.DB
}

func NewRentalRequestRepository(db *gorm.DB) *RentalRequestRepository {
	return &RentalRequestRepository{db: db}
}

type rentalRequestModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	Reference   string     `gorm:"column:reference;size:36;uniqueIndex"`
	Location    string     `gorm:"column:location;size:64;index"`
	Date        time.Time  `gorm:"column:date;index"`
	TimeSlot    string     `gorm:"column:time_slot;size:16"`
	Name        string     `gorm:"column:name;size:128"`
	Phone       string     `gorm:"column:phone;size:16"`
	Email       string     `gorm:"column:email;size:128"`
	Note        *string    `gorm:"column:note;type:text"`
	Status      string     `gorm:"column:status;size:16;index"`
	SubmittedAt time.Time  `gorm:"column:submitted_at"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
}

func (rentalRequestModel) TableName() string { return "rental_requests" }

func toDomainRequest(m rentalRequestModel) *domain.RentalRequest {
	var note string
	if m.Note != nil {
		note = *m.Note
	}

	return &domain.RentalRequest{
		ID:          m.ID,
		Reference:   m.Reference,
		Location:    m.Location,
		Date:        m.Date,
		TimeSlot:    m.TimeSlot,
		Name:        m.Name,
		Phone:       m.Phone,
		Email:       m.Email,
		Note:        note,
		Status:      domain.RequestStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		DecidedAt:   m.DecidedAt,
	}
}

func toRequestModel(r *domain.RentalRequest) rentalRequestModel {
	var note *string
	if r.Note != "" {
		v := r.Note
		note = &v
	}

	return rentalRequestModel{
		ID:          r.ID,
		Reference:   r.Reference,
		Location:    r.Location,
		Date:        r.Date,
		TimeSlot:    r.TimeSlot,
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Note:        note,
		Status:      string(r.Status),
		SubmittedAt: r.SubmittedAt,
		DecidedAt:   r.DecidedAt,
	}
}

func (r *RentalRequestRepository) Create(ctx context.Context, req *domain.RentalRequest) error {
	m := toRequestModel(req)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrDuplicateSlot
		}
		return tx.Error
	}
	*req = *toDomainRequest(m)
	return nil
}

func (r *RentalRequestRepository) GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	var m rentalRequestModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainRequest(m), nil
}

func (r *RentalRequestRepository) GetByReference(ctx context.Context, reference string) (*domain.RentalRequest, error) {
	var m rentalRequestModel
	tx := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainRequest(m), nil
}

// OccupiedSlotIDs returns the time_slot ids occupied for (location, date).
// A slot is occupied by a pending or approved request, except that approved
// requests whose window has fully elapsed (date before today, or an elapsed
// slot today) no longer count — the sweep may not have run yet.
func (r *RentalRequestRepository) OccupiedSlotIDs(ctx context.Context, location string, date, today time.Time, elapsedToday []string) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&rentalRequestModel{}).
		Where("location = ? AND date = ?", location, date).
		Where("status IN ?", []string{string(domain.RequestPending), string(domain.RequestApproved)})

	switch {
	case date.Before(today):
		q = q.Where("status <> ?", string(domain.RequestApproved))
	case date.Equal(today) && len(elapsedToday) > 0:
		q = q.Where("NOT (status = ? AND time_slot IN ?)", string(domain.RequestApproved), elapsedToday)
	}

	var ids []string
	if err := q.Order("time_slot").Pluck("time_slot", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FullyBookedDates returns every date on which all perDay slots for the
// location are occupied, under the same occupancy rule as OccupiedSlotIDs.
// Past dates are omitted entirely: they are unbookable regardless of
// occupancy, so flagging them would only confuse the calendar.
func (r *RentalRequestRepository) FullyBookedDates(ctx context.Context, location string, today time.Time, elapsedToday []string, perDay int) ([]time.Time, error) {
	q := r.db.WithContext(ctx).
		Model(&rentalRequestModel{}).
		Where("location = ?", location).
		Where("date >= ?", today).
		Where("status IN ?", []string{string(domain.RequestPending), string(domain.RequestApproved)})

	if len(elapsedToday) > 0 {
		q = q.Where("NOT (status = ? AND date = ? AND time_slot IN ?)", string(domain.RequestApproved), today, elapsedToday)
	}

	var dates []time.Time
	err := q.Select("date").
		Group("date").
		Having("COUNT(DISTINCT time_slot) >= ?", perDay).
		Order("date").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// List returns every request, newest submission first.
func (r *RentalRequestRepository) List(ctx context.Context) ([]domain.RentalRequest, error) {
	var models []rentalRequestModel
	tx := r.db.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RentalRequest, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainRequest(m))
	}
	return out, nil
}

// Decide moves a pending request to a terminal status. The WHERE guard on the
// current status makes concurrent decisions single-winner.
func (r *RentalRequestRepository) Decide(ctx context.Context, id int64, status domain.RequestStatus, decidedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&rentalRequestModel{}).
		Where("id = ? AND status = ?", id, string(domain.RequestPending)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"decided_at": decidedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// DeleteExpiredApproved removes approved requests whose slot has fully ended:
// any earlier date, or one of today's already-elapsed slots.
func (r *RentalRequestRepository) DeleteExpiredApproved(ctx context.Context, today time.Time, elapsedToday []string) (int64, error) {
	q := r.db.WithContext(ctx).Where("status = ?", string(domain.RequestApproved))

	if len(elapsedToday) > 0 {
		q = q.Where("date < ? OR (date = ? AND time_slot IN ?)", today, today, elapsedToday)
	} else {
		q = q.Where("date < ?", today)
	}

	tx := q.Delete(&rentalRequestModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// DeleteRejectedBefore prunes rejected requests submitted before the cutoff.
func (r *RentalRequestRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ? AND submitted_at < ?", string(domain.RequestRejected), cutoff).
		Delete(&rentalRequestModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc sqlite errors are not translated by gorm
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
