package services

import "errors"

// Business-rule rejections surfaced to handlers. None of these are retried
// internally; each is the terminal result of the attempted operation.
var (
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrUserNotFound          = errors.New("user not found")
	ErrPollNotFound          = errors.New("poll not found")
	ErrOutcomeNotFound       = errors.New("outcome not found")
	ErrPollNotActive         = errors.New("poll is not active")
	ErrInvalidAmount         = errors.New("bet amount must be a positive whole number of points")
	ErrInsufficientFunds     = errors.New("insufficient points")
	ErrOutcomeMismatch       = errors.New("outcome does not belong to this poll")
	ErrSingleChoiceViolation = errors.New("you can only vote on one outcome for this poll")
	ErrNotAdmin              = errors.New("only admins can perform this action")
	ErrInvalidOutcomes       = errors.New("polls must have between 2 and 10 unique outcomes")
	ErrAPIKeyNotFound        = errors.New("api key not found")
	ErrLinkTokenInvalid      = errors.New("link token is invalid or expired")
)
