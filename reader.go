package bulkdir

// Reader is a fluent builder for configuring a directory read.
//
//	entries, err := bulkdir.NewReader("/tmp").
//		Name().
//		Size().
//		ObjectType().
//		BufferSize(128 * 1024).
//		Read()
type Reader struct {
	path           string
	attrs          RequestedAttributes
	bufSize        int
	followSymlinks bool
}

// NewReader returns a builder for path with no attributes selected, the
// default buffer capacity, and symlink following enabled.
func NewReader(path string) *Reader {
	return &Reader{
		path:           path,
		bufSize:        DefaultBufferSize,
		followSymlinks: true,
	}
}

// Name requests entry names. Names are always retrieved even when this is
// not called; the method exists for symmetry.
func (r *Reader) Name() *Reader {
	r.attrs.Name = true
	return r
}

// ObjectType requests the filesystem node kind.
func (r *Reader) ObjectType() *Reader {
	r.attrs.ObjectType = true
	return r
}

// Size requests total sizes in bytes.
func (r *Reader) Size() *Reader {
	r.attrs.Size = true
	return r
}

// AllocSize requests allocated sizes on disk.
func (r *Reader) AllocSize() *Reader {
	r.attrs.AllocSize = true
	return r
}

// ModifiedTime requests last modification times.
func (r *Reader) ModifiedTime() *Reader {
	r.attrs.ModifiedTime = true
	return r
}

// Permissions requests Unix permission masks.
func (r *Reader) Permissions() *Reader {
	r.attrs.Permissions = true
	return r
}

// Inode requests file IDs.
func (r *Reader) Inode() *Reader {
	r.attrs.Inode = true
	return r
}

// EntryCount requests directory entry counts.
func (r *Reader) EntryCount() *Reader {
	r.attrs.EntryCount = true
	return r
}

// AllAttributes requests everything.
func (r *Reader) AllAttributes() *Reader {
	r.attrs = AllAttributes()
	return r
}

// Attributes replaces the attribute selection wholesale.
func (r *Reader) Attributes(attrs RequestedAttributes) *Reader {
	r.attrs = attrs
	return r
}

// BufferSize sets the fetch buffer capacity in bytes. Values below the
// package minimum are raised to it.
func (r *Reader) BufferSize(n int) *Reader {
	r.bufSize = n
	return r
}

// FollowSymlinks controls whether symbolic links are followed when reading
// attributes. Default is true.
func (r *Reader) FollowSymlinks(follow bool) *Reader {
	r.followSymlinks = follow
	return r
}

// Read opens the directory and returns the entry stream. The name
// attribute is forced on before the first fetch.
func (r *Reader) Read() (*Entries, error) {
	return newEntries(r.path, r.attrs, r.bufSize, r.followSymlinks)
}
