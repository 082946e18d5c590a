package field

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrTruncatedData          = errors.New("truncated data")
	ErrSaveNotSupported       = errors.New("save not supported")
	ErrEnvironmentUnsupported = errors.New("format unsupported in this environment")
	ErrPreconditionViolation  = errors.New("precondition violation")
)

func outOfBounds(x, y, width, height int) error {
	return errors.Wrapf(ErrPreconditionViolation, "block (%d,%d) outside of %dx%d field", x, y, width, height)
}
