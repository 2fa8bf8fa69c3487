package whatsapp

import "errors"

var (
	ErrAlreadyExists     = errors.New("whatsapp channel already exists")
	ErrNotFound          = errors.New("whatsapp channel not found")
	ErrClientUnavailable = errors.New("whatsapp client not available")
	ErrNotConnected      = errors.New("whatsapp channel not connected")
)
