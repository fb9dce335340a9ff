package services

import "errors"

// Chat failures the HTTP layer maps to distinct status codes. Anything else
// bubbling out of a service is an internal storage fault and must not leak
// driver details to the caller.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrVeterinarianNotFound    = errors.New("veterinarian not found")
	ErrVeterinarianUnavailable = errors.New("veterinarian is not available for chat")
	ErrConversationNotFound    = errors.New("conversation not found")
	ErrConversationClosed      = errors.New("cannot send messages to a closed conversation")
	ErrMessageNotFound         = errors.New("message not found")
	ErrNotParticipant          = errors.New("you don't have access to this conversation")
	ErrNotSender               = errors.New("you can only delete your own messages")
	ErrEmptyContent            = errors.New("message content is required")
)
