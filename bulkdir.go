// Package bulkdir enumerates directory contents on darwin through the
// getattrlistbulk system call, which packs many entries' attributes into a
// single buffer per call instead of paying one stat per entry. Callers pick
// the attributes they need and iterate a lazy stream of decoded entries;
// the buffer is refilled transparently as it is consumed.
//
//	entries, err := bulkdir.ReadDir("/tmp", bulkdir.RequestedAttributes{
//		Name: true,
//		Size: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer entries.Close()
//	for entry, err := range entries.All() {
//		...
//	}
//
// On every other platform opening a stream fails with [ErrNotSupported].
package bulkdir

// DefaultBufferSize is the fetch buffer capacity used by ReadDir. Larger
// buffers mean fewer syscalls: 256 KiB suits directories with tens of
// thousands of entries, 1 MiB hundreds of thousands.
const DefaultBufferSize = 64 * 1024

// minBufferSize is the floor applied to caller-supplied capacities; a
// buffer must at least fit one record's fixed section and a long name.
const minBufferSize = 1024

// ReadDir opens path and returns a stream over its entries with the given
// attributes, using DefaultBufferSize and following symlinks.
func ReadDir(path string, attrs RequestedAttributes) (*Entries, error) {
	return ReadDirBuffer(path, attrs, DefaultBufferSize)
}

// ReadDirBuffer is ReadDir with an explicit fetch buffer capacity. Capacity
// only affects how often the buffer is refilled, never which entries are
// yielded.
func ReadDirBuffer(path string, attrs RequestedAttributes, bufSize int) (*Entries, error) {
	return newEntries(path, attrs, bufSize, true)
}

func newEntries(path string, attrs RequestedAttributes, bufSize int, followSymlinks bool) (*Entries, error) {
	if bufSize < minBufferSize {
		bufSize = minBufferSize
	}
	f, err := openFetcher(path, attrs, bufSize, followSymlinks)
	if err != nil {
		return nil, err
	}
	return &Entries{f: f}, nil
}
