package steam

import "steam-auth-service/internal/auth/provider/openid"

// ErrorKind tags the failure modes of the steam strategy.
type ErrorKind int

const (
	KindInvalidEndpoint ErrorKind = iota + 1
	KindFetchFailed
	KindInvalidProfile
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidEndpoint:
		return "invalid_endpoint"
	case KindFetchFailed:
		return "fetch_failed"
	case KindInvalidProfile:
		return "invalid_profile"
	default:
		return "unknown"
	}
}

func (k ErrorKind) message() string {
	switch k {
	case KindInvalidEndpoint:
		return "invalid op_endpoint"
	case KindFetchFailed:
		return "failed to fetch steam profile"
	case KindInvalidProfile:
		return "invalid steam profile"
	default:
		return "steam error"
	}
}

// Sentinels for errors.Is; matching compares Kind only.
var (
	ErrInvalidEndpoint = &Error{Kind: KindInvalidEndpoint, Message: KindInvalidEndpoint.message()}
	ErrFetchFailed     = &Error{Kind: KindFetchFailed, Message: KindFetchFailed.message()}
	ErrInvalidProfile  = &Error{Kind: KindInvalidProfile, Message: KindInvalidProfile.message()}
)

// Error is the steam flavour of *openid.Error: errors.As with an
// *openid.Error target matches it too.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Message: kind.message(), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "steam: " + e.Message + ": " + e.Err.Error()
	}
	return "steam: " + e.Message
}

func (e *Error) Unwrap() error {
	return &openid.Error{Message: e.Message, Err: e.Err}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
