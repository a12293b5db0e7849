//go:build darwin

package bulkdir

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// x/sys/unix does not expose getattrlistbulk, so the libc stub is wired up
// here the same way the unix package wires its own darwin syscalls: a
// trampoline resolved from libSystem, dispatched through the runtime's
// syscall6.

// Implemented in the runtime package (runtime/sys_darwin.go)
func syscall_syscall6(fn, a1, a2, a3, a4, a5, a6 uintptr) (r1, r2 uintptr, err syscall.Errno)

//go:linkname syscall_syscall6 syscall.syscall6

// Single-word zero for use when we need a valid pointer to 0 bytes.
var _zero uintptr

// getattrlistbulk reads attributes for multiple directory entries into buf
// and returns the number of entries packed. A return of 0 means the
// directory has been fully enumerated.
func getattrlistbulk(dirfd int, list *unix.Attrlist, buf []byte, options uint64) (int, error) {
	var p unsafe.Pointer
	if len(buf) > 0 {
		p = unsafe.Pointer(&buf[0])
	} else {
		p = unsafe.Pointer(&_zero)
	}
	r0, _, e1 := syscall_syscall6(libc_getattrlistbulk_trampoline_addr,
		uintptr(dirfd), uintptr(unsafe.Pointer(list)), uintptr(p),
		uintptr(len(buf)), uintptr(options), 0)
	n := int(r0)
	if e1 != 0 {
		return 0, e1
	}
	if n < 0 {
		return 0, syscall.EINVAL
	}
	return n, nil
}

var libc_getattrlistbulk_trampoline_addr uintptr

//go:cgo_import_dynamic libc_getattrlistbulk getattrlistbulk "/usr/lib/libSystem.B.dylib"
