//go:build darwin

package bulkdir

import (
	"golang.org/x/sys/unix"
)

// maxInterruptRetries bounds the transparent retry of a signal-interrupted
// bulk call. Interruption is not an error and is never observed by the
// caller, but retrying without a cap could spin forever under a signal
// storm; past the cap the EINTR surfaces as a SyscallError.
const maxInterruptRetries = 128

// dirFetcher owns one open directory descriptor and one reusable fetch
// buffer. It must not be used from two goroutines at once.
type dirFetcher struct {
	fd     int
	closed bool
	list   unix.Attrlist
	opts   uint64
	buf    []byte
}

// openFetcher opens path as a directory and prepares the attribute request.
// No bulk call is issued until the first fetch.
func openFetcher(path string, attrs RequestedAttributes, bufSize int, followSymlinks bool) (*dirFetcher, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errnoToPathError(err, "open", path)
	}

	m := attrs.normalize().masks()
	opts := uint64(fsoptPackInvalAttrs)
	if !followSymlinks {
		opts |= fsoptNoFollow
	}

	return &dirFetcher{
		fd: fd,
		list: unix.Attrlist{
			Bitmapcount: attrBitMapCount,
			Commonattr:  m.common,
			Volattr:     m.vol,
			Dirattr:     m.dir,
			Fileattr:    m.file,
			Forkattr:    m.fork,
		},
		opts: opts,
		buf:  make([]byte, bufSize),
	}, nil
}

// fetch issues one bulk call and returns the valid byte span of the buffer,
// or a nil span once the directory is exhausted. The span length comes from
// scanning record length prefixes, not from the call's entry count: the
// count says how many records were packed but not where they end. The count
// does bound the scan, so stale bytes from an earlier fill are never taken
// for a record.
func (f *dirFetcher) fetch() ([]byte, error) {
	if f.closed {
		return nil, NewSyscallError("getattrlistbulk", ErrClosed)
	}

	// The kernel may scribble on the attrlist argument, so hand it a copy
	// and keep the prepared one pristine across refills.
	list := f.list
	for retries := 0; ; retries++ {
		n, err := getattrlistbulk(f.fd, &list, f.buf, f.opts)
		if err == unix.EINTR && retries < maxInterruptRetries {
			continue
		}
		if err != nil {
			return nil, NewSyscallError("getattrlistbulk", err)
		}
		if n == 0 {
			return nil, nil
		}
		return f.buf[:validBytes(f.buf, n)], nil
	}
}

// Close releases the directory descriptor. Only the first call closes it.
func (f *dirFetcher) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return unix.Close(f.fd)
}
