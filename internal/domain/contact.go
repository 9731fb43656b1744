package domain

import "time"

// ContactStatus tracks support inbox handling.
type ContactStatus string

const (
	ContactOpen     ContactStatus = "open"
	ContactResolved ContactStatus = "resolved"
)

// ContactRequest is a message sent through the public contact form.
type ContactRequest struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    ContactStatus
	CreatedAt time.Time
}

// ContactInput is the public form payload.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}
