package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
)

// DescError carries a client facing description on top of one of the
// sentinel kinds above.
type DescError struct {
	kind error
	desc string
}

func (e *DescError) Error() string {
	return e.kind.Error() + ": " + e.desc
}

func (e *DescError) Unwrap() error {
	return e.kind
}

func (e *DescError) Description() string {
	return e.desc
}

func Wrap(kind error, desc string) error {
	return &DescError{kind: kind, desc: desc}
}

// Description returns the description attached with Wrap, or "" if none.
func Description(err error) string {
	var de *DescError
	if errors.As(err, &de) {
		return de.desc
	}
	return ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
