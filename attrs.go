package bulkdir

// Attribute bit values from sys/attr.h and option bits from sys/fsgetpath.h.
// These are declared here rather than pulled from x/sys/unix so the decoder
// and its tests compile on every platform. A darwin-gated test checks them
// against the unix package values.
const (
	attrBitMapCount = 5

	attrCmnReturnedAttrs = 0x80000000
	attrCmnName          = 0x00000001
	attrCmnObjType       = 0x00000008
	attrCmnModTime       = 0x00000400
	attrCmnAccessMask    = 0x00020000
	attrCmnFileID        = 0x02000000

	attrFileTotalSize = 0x00000002
	attrFileAllocSize = 0x00000004

	attrDirEntryCount = 0x00000002

	fsoptNoFollow       = 0x00000001
	fsoptPackInvalAttrs = 0x00000008
)

// attrMasks holds the five attribute bitmask categories in the order the
// kernel declares them: common, volume, directory, file, fork.
type attrMasks struct {
	common uint32
	vol    uint32
	dir    uint32
	file   uint32
	fork   uint32
}

// RequestedAttributes selects which attributes are retrieved for each
// directory entry. Only requested attributes are fetched, which keeps the
// packed records small and the enumeration fast. The zero value requests
// nothing; Name is forced on before any fetch regardless of what the caller
// sets, since entries without names are useless.
type RequestedAttributes struct {
	// Name is the file or directory name.
	Name bool
	// ObjectType is the filesystem node kind (file, directory, symlink, ...).
	ObjectType bool
	// Size is the total size in bytes.
	Size bool
	// AllocSize is the allocated size on disk.
	AllocSize bool
	// ModifiedTime is the last modification time.
	ModifiedTime bool
	// Permissions is the Unix permission mask.
	Permissions bool
	// Inode is the file ID / inode number.
	Inode bool
	// EntryCount is the number of entries a directory holds. Only returned
	// for directories.
	EntryCount bool
}

// AllAttributes returns a request with every attribute enabled.
func AllAttributes() RequestedAttributes {
	return RequestedAttributes{
		Name:         true,
		ObjectType:   true,
		Size:         true,
		AllocSize:    true,
		ModifiedTime: true,
		Permissions:  true,
		Inode:        true,
		EntryCount:   true,
	}
}

// normalize forces the name attribute on. Applied before any fetch; callers
// never observe a stream without names.
func (r RequestedAttributes) normalize() RequestedAttributes {
	r.Name = true
	return r
}

// masks encodes the request into the five wire bitmask categories. The
// returned-attributes marker is always set so every record self-describes
// which attributes the kernel actually supplied.
func (r RequestedAttributes) masks() attrMasks {
	m := attrMasks{common: attrCmnReturnedAttrs}
	if r.Name {
		m.common |= attrCmnName
	}
	if r.ObjectType {
		m.common |= attrCmnObjType
	}
	if r.ModifiedTime {
		m.common |= attrCmnModTime
	}
	if r.Permissions {
		m.common |= attrCmnAccessMask
	}
	if r.Inode {
		m.common |= attrCmnFileID
	}
	if r.Size {
		m.file |= attrFileTotalSize
	}
	if r.AllocSize {
		m.file |= attrFileAllocSize
	}
	if r.EntryCount {
		m.dir |= attrDirEntryCount
	}
	return m
}
