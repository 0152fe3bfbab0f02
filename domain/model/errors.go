package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCredentialNotFound is returned by the credential store when no row
	// exists for a (user, platform) pair.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrReauthRequired signals that the stored refresh token was rejected by
	// the platform; the credential has been deleted and the user must run the
	// OAuth connect flow again.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrRefreshFailed signals a transient token-endpoint failure; the stored
	// credential is untouched and the caller may retry later.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrVideoIdeaNotFound is returned when no video idea matches the id for
	// the requesting user.
	ErrVideoIdeaNotFound = errors.New("video idea not found")

	// ErrInsufficientCredits is returned on submission when the user's credit
	// balance is exhausted.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// PreconditionError is a publish precondition violation detected before any
// network call. Platforms names the offending platforms verbatim.
type PreconditionError struct {
	Reason    string
	Platforms []Platform
}

func (e *PreconditionError) Error() string {
	if len(e.Platforms) == 0 {
		return e.Reason
	}
	names := make([]string, len(e.Platforms))
	for i, p := range e.Platforms {
		names[i] = string(p)
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(names, ", "))
}

// UploadError wraps one platform's upload failure. It is isolated to that
// platform's result entry and never aborts sibling uploads.
type UploadError struct {
	Platform Platform
	Step     string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload failed at %s: %v", e.Platform, e.Step, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// InvalidTransitionError reports an illegal approval state transition.
type InvalidTransitionError struct {
	From ApprovalStatus
	To   ApprovalStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}
