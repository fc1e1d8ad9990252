package verify

import "errors"

var (
	ErrCheckpointOutOfRange   = errors.New("checkpoint_out_of_range")
	ErrCheckpointExpired      = errors.New("checkpoint_expired")
	ErrCheckInBlocked         = errors.New("checkin_blocked")
	ErrCheckInNotFound        = errors.New("checkin_not_found")
	ErrCheckInAlreadyVerified = errors.New("checkin_already_verified")
	ErrInvalidSubmission      = errors.New("invalid_submission")
)
