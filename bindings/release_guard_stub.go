//go:build !debug

package main

import "unsafe"

// trackAlloc and untrackAlloc are no-ops outside debug builds; the
// allocation-set guard in release_guard.go is opt-in bookkeeping, not
// something production calls pay for.
func trackAlloc(unsafe.Pointer)   {}
func untrackAlloc(unsafe.Pointer) {}
