package services

import "errors"

var (
	ErrCommunityRequired = errors.New("community name is required")
	ErrCommunityNotFound = errors.New("community not found")
	ErrChatNotConfigured = errors.New("community chat id not configured")
	ErrMissingTelegramID = errors.New("telegram id not provided")
	ErrTelegramDisabled  = errors.New("telegram bot token not configured")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidRecipient  = errors.New("invalid recipient")
)
