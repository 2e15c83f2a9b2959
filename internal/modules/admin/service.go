package admin

import (
	"context"
	"errors"
	"log"
	"time"

	"roomrental/internal/domain"
	"roomrental/internal/pkg/timeslot"
	"roomrental/internal/repository"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type Service struct {
	requests RequestRepository
	users    UserRepository
	notifs   NotificationSender

	now func() time.Time
}

func NewService(requests RequestRepository, users UserRepository, notifs NotificationSender) *Service {
	return &Service{
		requests: requests,
		users:    users,
		notifs:   notifs,
		now:      time.Now,
	}
}

// ListRequests returns every request for review, newest submission first.
// The expiry sweep runs first so stale approved bookings neither linger in
// the list nor keep occupying their slots.
func (s *Service) ListRequests(ctx context.Context) ([]domain.RentalRequest, error) {
	if n, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	} else if n > 0 {
		log.Printf("expiry sweep removed %d approved requests", n)
	}

	return s.requests.List(ctx)
}

// Decide moves a pending request to approved or rejected. Rejected requests
// are retained; they free the slot immediately because occupancy only counts
// pending and approved.
func (s *Service) Decide(ctx context.Context, id int64, action string) (*domain.RentalRequest, error) {
	var status domain.RequestStatus
	switch action {
	case ActionApprove:
		status = domain.RequestApproved
	case ActionReject:
		status = domain.RequestRejected
	default:
		return nil, ErrInvalidAction
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != domain.RequestPending {
		return nil, ErrInvalidStatusTransition
	}

	ok, err := s.requests.Decide(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// another administrator decided first
		return nil, ErrInvalidStatusTransition
	}

	req, err = s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyRequestDecided(ctx, req)
	}

	return req, nil
}

// ListUsers returns every account for the user management page.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ToggleUserRole flips an account between member and admin. Administrators
// cannot change their own role, so at least one admin always remains.
func (s *Service) ToggleUserRole(ctx context.Context, actingUserID, id int64) (*domain.User, error) {
	if id == actingUserID {
		return nil, ErrSelfManagement
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	role := domain.RoleAdmin
	if user.Role == domain.RoleAdmin {
		role = domain.RoleMember
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Role = role
	return user, nil
}

// DeleteUser removes an account. Self-deletion is refused for the same
// reason as self-demotion.
func (s *Service) DeleteUser(ctx context.Context, actingUserID, id int64) error {
	if id == actingUserID {
		return ErrSelfManagement
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// SweepExpired deletes approved requests whose slot window has fully elapsed
// and reports how many were removed. Running it twice in a row is a no-op.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	return s.requests.DeleteExpiredApproved(ctx, timeslot.Midnight(now), timeslot.ElapsedIDs(now))
}
