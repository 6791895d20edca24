package referrals

import "errors"

// Failure taxonomy for the referral core. Handlers translate these into HTTP
// statuses; anything else coming out of the service is treated as an internal
// error and never shown to the caller verbatim.
var (
	ErrNotFound          = errors.New("account not found")
	ErrUnknownCode       = errors.New("referral code not found")
	ErrDuplicateContact  = errors.New("an account with this contact already exists")
	ErrAlreadyAttributed = errors.New("account is already attributed to a referral code")
	ErrInvalidState      = errors.New("operation not allowed in the current enrollment state")
	ErrReferredRemain    = errors.New("college still has referred students")

	// ErrCodeSpaceExhausted means code generation kept colliding past the
	// retry bound. That is an invariant failure, not caller error.
	ErrCodeSpaceExhausted = errors.New("could not issue a unique referral code")
)
