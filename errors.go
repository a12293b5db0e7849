package bulkdir

import (
	"errors"
	iofs "io/fs"
	"os"
	"syscall"
)

var (
	// ErrNotSupported is returned when the bulk enumeration call is not
	// available on the running platform. Only darwin provides it.
	ErrNotSupported = errors.New("bulk attribute enumeration is not supported on this platform")
	// ErrNotDirectory is returned when the supplied path resolves to
	// something other than a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidEntryLength is a decode error for a record whose length
	// prefix is zero. A record must at least cover its own prefix and
	// returned-attribute bitmap.
	ErrInvalidEntryLength = errors.New("invalid entry length")
	// ErrBufferTooSmall is a decode error for a record whose declared length
	// extends past the valid bytes of the fetch buffer.
	ErrBufferTooSmall = errors.New("entry length exceeds buffer")
	// ErrUnexpectedEnd is a decode error for a fixed-width attribute read
	// that would run past the end of the buffer.
	ErrUnexpectedEnd = errors.New("unexpected end of buffer")
	// ErrInvalidOffset is a decode error for an attribute reference whose
	// computed data range falls outside the buffer.
	ErrInvalidOffset = errors.New("invalid offset in attribute reference")

	// ErrClosed is an error for when a stream is used after being closed.
	ErrClosed = iofs.ErrClosed
	// ErrInvalid is an error for when an invalid argument was used, such as
	// a path containing a NUL byte.
	ErrInvalid = iofs.ErrInvalid
	// ErrNotExist is an error for when the directory does not exist.
	ErrNotExist = iofs.ErrNotExist
	// ErrPermission is an error for when the required permissions to open
	// the directory are missing.
	ErrPermission = iofs.ErrPermission
)

// PathError records an error and the operation and file path that caused it.
// Opening the directory surfaces failures as *PathError with Op "open".
type PathError = iofs.PathError

// SyscallError records an error from the bulk enumeration call itself.
type SyscallError = os.SyscallError

// NewSyscallError returns, as an error, a new [*os.SyscallError] with the
// given system call name and error details. As a convenience, if err is nil,
// [NewSyscallError] returns nil.
func NewSyscallError(syscall string, err error) error {
	return os.NewSyscallError(syscall, err)
}

// IsDecodeError reports whether err is one of the per-record decode errors.
// Decode errors do not terminate the stream; callers that want best-effort
// enumeration can skip them and keep pulling.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidEntryLength) ||
		errors.Is(err, ErrBufferTooSmall) ||
		errors.Is(err, ErrUnexpectedEnd) ||
		errors.Is(err, ErrInvalidOffset)
}

// errnoToPathError converts an errno from opening the directory into a
// PathError carrying one of the package sentinel errors, so callers can
// classify with errors.Is without tracking raw errnos.
func errnoToPathError(err error, op, path string) error {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return &PathError{
			Op:   op,
			Path: path,
			Err:  err,
		}
	}

	switch errno {
	// No such file or directory
	case syscall.ENOENT:
		return &PathError{
			Op:   op,
			Path: path,
			Err:  ErrNotExist,
		}
	// Not a directory
	case syscall.ENOTDIR:
		return &PathError{
			Op:   op,
			Path: path,
			Err:  ErrNotDirectory,
		}
	// Operation not permitted / permission denied
	case syscall.EPERM, syscall.EACCES:
		return &PathError{
			Op:   op,
			Path: path,
			Err:  ErrPermission,
		}
	// Invalid argument, notably a NUL byte embedded in the path
	case syscall.EINVAL:
		return &PathError{
			Op:   op,
			Path: path,
			Err:  ErrInvalid,
		}
	default:
		return &PathError{
			Op:   op,
			Path: path,
			Err:  errno,
		}
	}
}
