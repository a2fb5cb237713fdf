package models

// SubscribeRequest adds an address to the subscriber directory.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TestEmailRequest sends a canned message, defaulting to the configured
// test recipient when To is empty.
type TestEmailRequest struct {
	To string `json:"to" validate:"omitempty,email"`
}
