package admin

import (
	"context"
	"time"

	"roomrental/internal/domain"
)

type RequestRepository interface {
	List(ctx context.Context) ([]domain.RentalRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error)
	Decide(ctx context.Context, id int64, status domain.RequestStatus, decidedAt time.Time) (bool, error)
	DeleteExpiredApproved(ctx context.Context, today time.Time, elapsedToday []string) (int64, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	Delete(ctx context.Context, id int64) error
}

type NotificationSender interface {
	NotifyRequestDecided(ctx context.Context, req *domain.RentalRequest) error
}
