package openid

// Error is returned for every failure raised by an OpenID strategy.
// Provider specific strategies specialise it by unwrapping to an *Error.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "openid: " + e.Message + ": " + e.Err.Error()
	}
	return "openid: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
