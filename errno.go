package laio

import (
	stderrors "errors"
	"syscall"
)

// translateSysError maps a native OS error code to the portable taxonomy.
// Unmapped codes degrade to the generic I/O error; 0 maps to no error.
func translateSysError(code syscall.Errno) error {
	switch code {
	case 0:
		return nil
	case syscall.ENOMEM:
		return ErrOutOfMemory
	case syscall.EAGAIN, syscall.EMFILE, syscall.ENFILE:
		return ErrResourceLimit
	case syscall.EINVAL:
		return ErrInvalidArgument
	}
	return ErrIO
}

// Errno values.
var (
	errnoEIO = int32(syscall.EIO)
)

// nativeErrno extracts the positive native error code carried by err,
// for the secondary result field of completion events. Failures that
// carry no errno are reported as EIO rather than silently as success.
func nativeErrno(err error) int32 {
	if err == nil {
		return 0
	}
	var code syscall.Errno
	if stderrors.As(err, &code) && code != 0 {
		return int32(code)
	}
	return errnoEIO
}

// classify picks the taxonomy error for a native failure.
func classify(err error) error {
	var code syscall.Errno
	if stderrors.As(err, &code) {
		if t := translateSysError(code); t != nil {
			return t
		}
	}
	return ErrIO
}
