//go:build !darwin

package bulkdir

// Only darwin provides a bulk attribute enumeration call. Everything above
// the fetcher compiles and tests everywhere; opening a stream on another
// platform fails fast before touching the filesystem.
func openFetcher(path string, attrs RequestedAttributes, bufSize int, followSymlinks bool) (bulkFetcher, error) {
	return nil, ErrNotSupported
}
