package rental

import (
	"context"
	"time"

	"roomrental/internal/domain"
)

type RequestRepository interface {
	Create(ctx context.Context, req *domain.RentalRequest) error
	GetByReference(ctx context.Context, reference string) (*domain.RentalRequest, error)
	OccupiedSlotIDs(ctx context.Context, location string, date, today time.Time, elapsedToday []string) ([]string, error)
	FullyBookedDates(ctx context.Context, location string, today time.Time, elapsedToday []string, perDay int) ([]time.Time, error)
}

type LocationRepository interface {
	List(ctx context.Context) ([]domain.Location, error)
	Exists(ctx context.Context, name string) (bool, error)
}

type NotificationSender interface {
	NotifyRequestSubmitted(ctx context.Context, req *domain.RentalRequest) error
}
