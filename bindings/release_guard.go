//go:build debug

package main

import (
	"fmt"
	"sync"
	"unsafe"
)

// allocGuard tracks every buffer handed across the boundary by
// rtfmd_convert so free_buffer can catch a double free or a pointer it
// never allocated. Compiled only under the debug build tag; production
// builds trust the at-most-once release contract and skip the bookkeeping.
var (
	allocGuardMu sync.Mutex
	allocGuard   = map[unsafe.Pointer]struct{}{}
)

func trackAlloc(p unsafe.Pointer) {
	allocGuardMu.Lock()
	defer allocGuardMu.Unlock()
	allocGuard[p] = struct{}{}
}

func untrackAlloc(p unsafe.Pointer) {
	allocGuardMu.Lock()
	defer allocGuardMu.Unlock()
	if _, ok := allocGuard[p]; !ok {
		panic(fmt.Sprintf("free_buffer: pointer %p was not allocated by rtfmd_convert (double free or foreign pointer)", p))
	}
	delete(allocGuard, p)
}
