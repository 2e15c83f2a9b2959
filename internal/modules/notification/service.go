package notification

import (
	"context"
	"log"
	"time"

	"roomrental/internal/domain"
	"roomrental/internal/kafka"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Service fans rental events out to the notifications topic (consumed by the
// email worker) and to the live admin feed. Delivery is best-effort: a broker
// outage must never fail the booking operation that triggered the event.
type Service struct {
	producer Producer
	topic    string
	hub      *Hub
}

func NewService(producer Producer, topic string, hub *Hub) *Service {
	return &Service{
		producer: producer,
		topic:    topic,
		hub:      hub,
	}
}

func (s *Service) NotifyRequestSubmitted(ctx context.Context, req *domain.RentalRequest) error {
	return s.emit(ctx, kafka.EventRequestSubmitted, req)
}

func (s *Service) NotifyRequestDecided(ctx context.Context, req *domain.RentalRequest) error {
	eventType := kafka.EventRequestApproved
	if req.Status == domain.RequestRejected {
		eventType = kafka.EventRequestRejected
	}
	return s.emit(ctx, eventType, req)
}

func (s *Service) emit(ctx context.Context, eventType string, req *domain.RentalRequest) error {
	event := kafka.RentalEvent{
		Type:      eventType,
		Reference: req.Reference,
		Location:  req.Location,
		Date:      req.Date.Format("2006-01-02"),
		TimeSlot:  req.TimeSlot,
		Name:      req.Name,
		Email:     req.Email,
		Status:    string(req.Status),
		CreatedAt: time.Now(),
	}

	if s.hub != nil {
		s.hub.Broadcast(event)
	}

	if s.producer == nil {
		return nil
	}
	if err := s.producer.Publish(ctx, s.topic, req.Reference, event); err != nil {
		log.Printf("notification publish failed: type=%s reference=%s err=%v", eventType, req.Reference, err)
		return err
	}
	return nil
}
