package bulkdir

import (
	"fmt"
	"time"
)

// ObjectType is the filesystem node kind reported by the kernel for a
// directory entry. The numeric values match the vnode types in sys/vnode.h;
// values this package does not model are carried through unchanged so newer
// kernels remain decodable.
type ObjectType uint32

const (
	// Regular is a regular file.
	Regular ObjectType = 1
	// Directory is a directory.
	Directory ObjectType = 2
	// BlockDevice is a block special device.
	BlockDevice ObjectType = 3
	// CharDevice is a character special device.
	CharDevice ObjectType = 4
	// Symlink is a symbolic link.
	Symlink ObjectType = 5
	// Socket is a socket.
	Socket ObjectType = 6
	// Fifo is a named pipe.
	Fifo ObjectType = 7
)

func (t ObjectType) String() string {
	switch t {
	case Regular:
		return "file"
	case Directory:
		return "directory"
	case BlockDevice:
		return "block device"
	case CharDevice:
		return "char device"
	case Symlink:
		return "symlink"
	case Socket:
		return "socket"
	case Fifo:
		return "fifo"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// DirEntry is the decoded metadata for a single directory entry. Name is
// always present; every other field is nil unless it was both requested and
// actually returned by the kernel for that entry (file-only attributes are
// not returned for directories and vice versa).
//
// Names are decoded with lossy UTF-8 conversion: invalid byte sequences are
// replaced with U+FFFD rather than failing the entry.
type DirEntry struct {
	Name         string      `json:"name"`
	ObjectType   *ObjectType `json:"object_type,omitempty"`
	Size         *uint64     `json:"size,omitempty"`
	AllocSize    *uint64     `json:"alloc_size,omitempty"`
	ModifiedTime *time.Time  `json:"modified_time,omitempty"`
	Permissions  *uint32     `json:"permissions,omitempty"`
	Inode        *uint64     `json:"inode,omitempty"`
	EntryCount   *uint32     `json:"entry_count,omitempty"`
}

// IsDir reports whether the entry is a directory. Requires the ObjectType
// attribute to have been requested.
func (e DirEntry) IsDir() bool {
	return e.ObjectType != nil && *e.ObjectType == Directory
}

// IsRegular reports whether the entry is a regular file.
func (e DirEntry) IsRegular() bool {
	return e.ObjectType != nil && *e.ObjectType == Regular
}

// IsSymlink reports whether the entry is a symbolic link.
func (e DirEntry) IsSymlink() bool {
	return e.ObjectType != nil && *e.ObjectType == Symlink
}
