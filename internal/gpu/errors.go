package gpu

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrFatalInit marks errors raised while building device, chain, or sync
	// objects. They are never retried.
	ErrFatalInit = errors.New("fatal initialization error")

	// ErrFatalRuntime marks acquire/submit/present failures other than the
	// out-of-date and suboptimal results.
	ErrFatalRuntime = errors.New("fatal runtime error")
)

// InitError marks err as a fatal initialization error.
func InitError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrFatalInit)
}

func InitErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrFatalInit)
}

// RuntimeError marks err as a fatal runtime error.
func RuntimeError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrFatalRuntime)
}
