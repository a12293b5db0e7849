package bulkdir

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"
	"unicode/utf8"
)

// Buffer layout returned by the bulk call. Each record is:
//
//	+--------------------+
//	| length (uint32)    |  total length of this record
//	+--------------------+
//	| returned bitmap    |  five uint32 masks (common/vol/dir/file/fork)
//	+--------------------+
//	| fixed attributes   |  present only when their bit is set, fixed order
//	+--------------------+
//	| variable data      |  name bytes, located via an attribute reference
//	+--------------------+
//
// All integers are native endian. The attribute reference for the name is an
// (int32 offset, uint32 length) pair whose offset is relative to the
// reference field's own position in the buffer, not the record start.
const (
	entryLenSize      = 4
	returnedAttrsSize = attrBitMapCount * 4
	attrReferenceSize = 8
)

// attrGroup indexes a mask within the returned-attribute bitmap, in the
// order the kernel packs them.
type attrGroup int

const (
	groupCommon attrGroup = iota
	groupVol
	groupDir
	groupFile
	groupFork
)

// returnedAttrs is the per-record bitmap declaring which of the requested
// attributes the kernel actually supplied for that record.
type returnedAttrs [attrBitMapCount]uint32

func (a returnedAttrs) has(g attrGroup, flag uint32) bool {
	return a[g]&flag != 0
}

// recordField binds one attribute bit to its decoder. The table below is the
// single source of truth for the wire order of the fixed attribute section;
// decoding walks it front to back and skips fields whose bit is absent.
type recordField struct {
	group attrGroup
	flag  uint32
	set   func(e *DirEntry, s *recordScanner) error
}

var recordFields = []recordField{
	{groupCommon, attrCmnName, setName},
	{groupCommon, attrCmnObjType, setObjectType},
	{groupCommon, attrCmnModTime, setModifiedTime},
	{groupCommon, attrCmnAccessMask, setPermissions},
	{groupCommon, attrCmnFileID, setInode},
	{groupFile, attrFileTotalSize, setSize},
	{groupFile, attrFileAllocSize, setAllocSize},
	{groupDir, attrDirEntryCount, setEntryCount},
}

// recordScanner reads fixed-width attribute fields from one record. Reads
// are bounds-checked against both the record's declared end and the buffer
// itself; buf is the whole valid span so attribute references can resolve
// data that lives past the fixed section.
type recordScanner struct {
	buf   []byte
	pos   int
	limit int
}

func (s *recordScanner) take(n int) ([]byte, error) {
	if s.pos+n > s.limit || s.pos+n > len(s.buf) {
		return nil, ErrUnexpectedEnd
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *recordScanner) u32() (uint32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b), nil
}

func (s *recordScanner) u64() (uint64, error) {
	b, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(b), nil
}

func (s *recordScanner) i64() (int64, error) {
	v, err := s.u64()
	return int64(v), err
}

// decodeRecord decodes the record beginning at buf[off] and returns the
// entry together with the number of bytes the record occupies. On a decode
// failure the consumed count is still returned whenever the record's own
// length prefix was readable and in bounds, so the caller can skip past the
// malformed record instead of re-decoding the same bytes forever. A consumed
// count of zero means the rest of the span is unusable.
func decodeRecord(buf []byte, off int) (DirEntry, int, error) {
	if off+entryLenSize > len(buf) {
		return DirEntry{}, 0, ErrUnexpectedEnd
	}
	length := int(binary.NativeEndian.Uint32(buf[off:]))
	if length == 0 {
		return DirEntry{}, 0, ErrInvalidEntryLength
	}
	if off+length > len(buf) {
		return DirEntry{}, 0, ErrBufferTooSmall
	}

	s := recordScanner{buf: buf, pos: off + entryLenSize, limit: off + length}

	var returned returnedAttrs
	for i := range returned {
		v, err := s.u32()
		if err != nil {
			return DirEntry{}, length, err
		}
		returned[i] = v
	}

	var entry DirEntry
	for _, f := range recordFields {
		if !returned.has(f.group, f.flag) {
			continue
		}
		if err := f.set(&entry, &s); err != nil {
			return DirEntry{}, length, err
		}
	}
	return entry, length, nil
}

// setName resolves the attribute reference for the entry name. The data
// offset is signed and relative to the reference field itself. The name is
// treated as a bounded byte string: it is trimmed at the first NUL when one
// is present, and decoded lossily so malformed bytes never fail the entry.
func setName(e *DirEntry, s *recordScanner) error {
	refPos := s.pos
	dataOffset, err := s.u32()
	if err != nil {
		return err
	}
	dataLength, err := s.u32()
	if err != nil {
		return err
	}

	start := refPos + int(int32(dataOffset))
	end := start + int(dataLength)
	if start < 0 || end < start || end > len(s.buf) {
		return ErrInvalidOffset
	}

	name := s.buf[start:end]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	e.Name = strings.ToValidUTF8(string(name), string(utf8.RuneError))
	return nil
}

func setObjectType(e *DirEntry, s *recordScanner) error {
	v, err := s.u32()
	if err != nil {
		return err
	}
	t := ObjectType(v)
	e.ObjectType = &t
	return nil
}

// setModifiedTime decodes a 16-byte timespec: int64 seconds then int64
// nanoseconds since the Unix epoch.
func setModifiedTime(e *DirEntry, s *recordScanner) error {
	sec, err := s.i64()
	if err != nil {
		return err
	}
	nsec, err := s.i64()
	if err != nil {
		return err
	}
	t := time.Unix(sec, nsec)
	e.ModifiedTime = &t
	return nil
}

func setPermissions(e *DirEntry, s *recordScanner) error {
	v, err := s.u32()
	if err != nil {
		return err
	}
	e.Permissions = &v
	return nil
}

func setInode(e *DirEntry, s *recordScanner) error {
	v, err := s.u64()
	if err != nil {
		return err
	}
	e.Inode = &v
	return nil
}

func setSize(e *DirEntry, s *recordScanner) error {
	v, err := s.u64()
	if err != nil {
		return err
	}
	e.Size = &v
	return nil
}

func setAllocSize(e *DirEntry, s *recordScanner) error {
	v, err := s.u64()
	if err != nil {
		return err
	}
	e.AllocSize = &v
	return nil
}

func setEntryCount(e *DirEntry, s *recordScanner) error {
	v, err := s.u32()
	if err != nil {
		return err
	}
	e.EntryCount = &v
	return nil
}

// validBytes walks record length prefixes from the front of buf and returns
// how many bytes hold complete records. The bulk call reports how many
// entries it packed, not how many bytes; the prefix scan stops at a zero
// length or a length that runs past the buffer, and everything before that
// point is the valid span handed to the decoder. The scan also stops after
// maxRecords records: the buffer is reused across refills without zeroing,
// so a stale length prefix sitting right at the span's end must not extend
// it into leftover bytes from an earlier fill.
func validBytes(buf []byte, maxRecords int) int {
	off := 0
	for rec := 0; rec < maxRecords && off+entryLenSize <= len(buf); rec++ {
		length := int(binary.NativeEndian.Uint32(buf[off:]))
		if length == 0 {
			break
		}
		if off+length > len(buf) {
			break
		}
		off += length
	}
	return off
}
