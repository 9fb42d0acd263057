// Command bindings exposes the conversion core across a narrow C-linkage
// surface so a host process can call convert/free_buffer/last_error
// without linking the Go runtime into its own entry point. Built with
// -buildmode=c-shared (or c-archive); `go build .` alone only validates
// the Go side.
//
// rtfmd_convert recovers from panics before returning across the C ABI:
// a panicking parser or generator becomes an Internal status and a
// last_error message rather than an aborted process, the same
// defer/recover discipline the hive wrapper puts around cgo-generated
// calls that can segfault on a NULL pointer. The other exported
// functions install no recover; in a debug build the release guard's
// panic in rtfmd_free_buffer is not contained.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"runtime"
	"unsafe"

	"github.com/go-rtfmd/rtfmd/pkg/convert"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
)

func main() {}

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

//export rtfmd_version
func rtfmd_version() *C.char {
	return C.CString(version)
}

// rtfmd_convert is the conversion entry point. direction is 0
// (rtf_to_markdown) or 1 (markdown_to_rtf). posture, if non-null, names
// a preset ("standard"/"enhanced"/"paranoid"); a null posture defaults
// to Enhanced. On success *out_ptr is a newly C-malloc'd buffer owned
// by the caller until released exactly once via rtfmd_free_buffer; on
// failure no buffer is allocated and the detail is available from
// rtfmd_last_error on the same thread.
//
//export rtfmd_convert
func rtfmd_convert(direction C.int, inPtr *C.uchar, inLen C.longlong, outPtr **C.uchar, outLen *C.longlong, posture *C.char) (status C.int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		if r := recover(); r != nil {
			setLastError(fmtPanic(r))
			status = statusInternal
		}
	}()

	if outPtr == nil || outLen == nil {
		setLastError("out_ptr and out_len must not be null")
		return statusInvalidArgument
	}

	cfg := policy.Enhanced()
	if posture != nil {
		if name := C.GoString(posture); name != "" {
			preset, ok := policy.PosturePreset(name)
			if !ok {
				setLastError("unknown posture preset: " + name)
				return statusInvalidArgument
			}
			cfg = preset
		}
	}

	var dir convert.Direction
	switch direction {
	case 0:
		dir = convert.RTFToMarkdown
	case 1:
		dir = convert.MarkdownToRTF
	default:
		setLastError("direction must be 0 (rtf_to_markdown) or 1 (markdown_to_rtf)")
		return statusInvalidArgument
	}

	var input []byte
	if inPtr != nil && inLen > 0 {
		input = unsafe.Slice((*byte)(unsafe.Pointer(inPtr)), int(inLen))
	}

	res, err := convert.Convert(dir, input, cfg)
	if err != nil {
		setLastError(err.Error())
		return statusForError(err)
	}

	buf := C.CBytes(res.Output)
	trackAlloc(buf)
	*outPtr = (*C.uchar)(buf)
	*outLen = C.longlong(len(res.Output))
	return statusSuccess
}

// rtfmd_free_buffer releases a buffer produced by rtfmd_convert. A null
// pointer is a no-op; releasing a pointer this boundary did not
// allocate, or releasing the same pointer twice, is a contract
// violation the debug build guard (release_guard.go) catches.
//
//export rtfmd_free_buffer
func rtfmd_free_buffer(ptr *C.uchar) {
	if ptr == nil {
		return
	}
	untrackAlloc(unsafe.Pointer(ptr))
	C.free(unsafe.Pointer(ptr))
}

// rtfmd_last_error copies the calling thread's most recent error
// message into buf (truncating to buf_len) and returns the number of
// bytes written. Calling with a null buf or non-positive buf_len
// returns the length the caller would need without writing anything.
//
//export rtfmd_last_error
func rtfmd_last_error(buf *C.char, bufLen C.longlong) C.longlong {
	msg := getLastError()
	if buf == nil || bufLen <= 0 {
		return C.longlong(len(msg))
	}
	n := len(msg)
	if n > int(bufLen) {
		n = int(bufLen)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(bufLen))
	copy(dst, msg[:n])
	return C.longlong(n)
}
