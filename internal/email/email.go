package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"roomrental/internal/kafka"
)

// Sender mails rental-event notifications to the requester. Without SMTP
// configuration it logs the message instead, which is enough for local runs.
type Sender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSender(addr, from, username, password string) *Sender {
	s := &Sender{addr: addr, from: from}
	if username != "" {
		host := addr
		for i := range addr {
			if addr[i] == ':' {
				host = addr[:i]
				break
			}
		}
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *Sender) Send(ctx context.Context, event kafka.RentalEvent) error {
	subject, body := render(event)

	if s.addr == "" {
		log.Printf("email (no SMTP configured) to=%s subject=%q body=%q", event.Email, subject, body)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, event.Email, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{event.Email}, []byte(msg))
}

func render(event kafka.RentalEvent) (subject, body string) {
	when := fmt.Sprintf("%s %s at %s", event.Date, event.TimeSlot, event.Location)

	switch event.Type {
	case kafka.EventRequestSubmitted:
		return "Rental request received",
			fmt.Sprintf("Hi %s,\n\nWe received your rental request for %s.\nReference: %s\nWe will email you once it has been reviewed.", event.Name, when, event.Reference)
	case kafka.EventRequestApproved:
		return "Rental request approved",
			fmt.Sprintf("Hi %s,\n\nYour rental request for %s has been approved.\nReference: %s", event.Name, when, event.Reference)
	case kafka.EventRequestRejected:
		return "Rental request declined",
			fmt.Sprintf("Hi %s,\n\nYour rental request for %s was declined.\nReference: %s", event.Name, when, event.Reference)
	default:
		return "Rental request update",
			fmt.Sprintf("Hi %s,\n\nThere is an update on your rental request for %s (reference %s): %s.", event.Name, when, event.Reference, event.Status)
	}
}
