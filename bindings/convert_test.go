package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRTFToMarkdownSuccess(t *testing.T) {
	input := []byte(`{\rtf1\ansi \b Hello\b0\par}`)
	inPtr := (*C.uchar)(C.CBytes(input))
	defer C.free(unsafe.Pointer(inPtr))

	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(0, inPtr, C.longlong(len(input)), &outPtr, &outLen, nil)
	require.Equal(t, statusSuccess, status)
	require.NotNil(t, outPtr)
	require.Greater(t, int(outLen), 0)

	out := C.GoBytes(unsafe.Pointer(outPtr), C.int(outLen))
	assert.Contains(t, string(out), "**Hello**")
	rtfmd_free_buffer(outPtr)
}

func TestConvertMarkdownToRTFSuccess(t *testing.T) {
	input := []byte("# Title\n\nBody text.\n")
	inPtr := (*C.uchar)(C.CBytes(input))
	defer C.free(unsafe.Pointer(inPtr))

	posture := C.CString("standard")
	defer C.free(unsafe.Pointer(posture))

	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(1, inPtr, C.longlong(len(input)), &outPtr, &outLen, posture)
	require.Equal(t, statusSuccess, status)
	require.NotNil(t, outPtr)

	out := C.GoBytes(unsafe.Pointer(outPtr), C.int(outLen))
	assert.Contains(t, string(out), "{\\rtf1")
	rtfmd_free_buffer(outPtr)
}

func TestConvertInvalidDirection(t *testing.T) {
	input := []byte("x")
	inPtr := (*C.uchar)(C.CBytes(input))
	defer C.free(unsafe.Pointer(inPtr))

	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(99, inPtr, C.longlong(len(input)), &outPtr, &outLen, nil)
	assert.Equal(t, statusInvalidArgument, status)
	assert.Nil(t, outPtr)
}

func TestConvertNilOutParamsRejected(t *testing.T) {
	status := rtfmd_convert(0, nil, 0, nil, nil, nil)
	assert.Equal(t, statusInvalidArgument, status)
}

func TestConvertUnknownPostureRejected(t *testing.T) {
	input := []byte("hi")
	inPtr := (*C.uchar)(C.CBytes(input))
	defer C.free(unsafe.Pointer(inPtr))
	posture := C.CString("bogus")
	defer C.free(unsafe.Pointer(posture))

	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(1, inPtr, C.longlong(len(input)), &outPtr, &outLen, posture)
	assert.Equal(t, statusInvalidArgument, status)
	assert.Nil(t, outPtr)
}

func TestConvertBlockedURISchemeUnderEnhanced(t *testing.T) {
	input := []byte("[click](javascript:alert(1))\n")
	inPtr := (*C.uchar)(C.CBytes(input))
	defer C.free(unsafe.Pointer(inPtr))
	posture := C.CString("enhanced")
	defer C.free(unsafe.Pointer(posture))

	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(1, inPtr, C.longlong(len(input)), &outPtr, &outLen, posture)
	assert.Equal(t, statusSecurityPolicy, status)
	assert.Nil(t, outPtr)
}

func TestLastErrorRoundTrip(t *testing.T) {
	var outPtr *C.uchar
	var outLen C.longlong
	status := rtfmd_convert(99, nil, 0, &outPtr, &outLen, nil)
	require.Equal(t, statusInvalidArgument, status)

	buf := make([]byte, 256)
	n := rtfmd_last_error((*C.char)(unsafe.Pointer(&buf[0])), C.longlong(len(buf)))
	require.Greater(t, int(n), 0)
	assert.Contains(t, string(buf[:n]), "direction")
}

func TestLastErrorQueryLengthOnly(t *testing.T) {
	var outPtr *C.uchar
	var outLen C.longlong
	rtfmd_convert(99, nil, 0, &outPtr, &outLen, nil)

	n := rtfmd_last_error(nil, 0)
	assert.Greater(t, int(n), 0)
}

func TestVersionNonEmpty(t *testing.T) {
	v := rtfmd_version()
	defer C.free(unsafe.Pointer(v))
	assert.NotEmpty(t, C.GoString(v))
}

func TestFreeBufferNilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		rtfmd_free_buffer(nil)
	})
}
