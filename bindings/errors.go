package main

/*
#include <pthread.h>
*/
import "C"

import (
	"fmt"
	"sync"

	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// Status codes cross the C ABI in place of the internal ErrKind
// taxonomy (pkg/types.ErrKind); values are stable across releases.
const (
	statusSuccess         C.int = 0
	statusInvalidArgument C.int = 1
	statusParseError      C.int = 2
	statusResourceLimit   C.int = 3
	statusSecurityPolicy  C.int = 4
	statusUnsupported     C.int = 5
	statusInternal        C.int = 6
)

func statusForError(err error) C.int {
	typed, ok := err.(*types.Error)
	if !ok {
		return statusInternal
	}
	switch typed.Kind {
	case types.ErrKindInvalidArgument:
		return statusInvalidArgument
	case types.ErrKindParse:
		return statusParseError
	case types.ErrKindResourceLimit:
		return statusResourceLimit
	case types.ErrKindSecurity:
		return statusSecurityPolicy
	case types.ErrKindUnsupported:
		return statusUnsupported
	default:
		return statusInternal
	}
}

// lastErrors holds one message per calling OS thread, keyed by the
// POSIX thread id of the thread the calling goroutine is pinned to
// (rtfmd_convert locks it for the call's duration via
// runtime.LockOSThread). Go exposes no native thread-local storage;
// pthread_self gives the boundary a stable per-thread key without
// reaching into the scheduler's internals.
var lastErrors sync.Map // map[uintptr]string

func threadKey() uintptr {
	return uintptr(C.pthread_self())
}

func setLastError(msg string) {
	lastErrors.Store(threadKey(), msg)
}

func getLastError() string {
	v, ok := lastErrors.Load(threadKey())
	if !ok {
		return ""
	}
	return v.(string)
}

func fmtPanic(r any) string {
	return fmt.Sprintf("internal panic recovered at boundary: %v", r)
}
