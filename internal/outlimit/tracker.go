// Package outlimit provides the single write-side byte-budget enforcement
// point shared by the RTF and Markdown generators.
package outlimit

import "github.com/go-rtfmd/rtfmd/pkg/types"

// Tracker accumulates output into a growable buffer and refuses any
// write that would push the total past its ceiling.
type Tracker struct {
	buf     []byte
	ceiling int64
}

// NewTracker returns a Tracker that fails writes once ceiling bytes have
// been accumulated. A ceiling of 0 means unbounded.
func NewTracker(ceiling int64) *Tracker {
	return &Tracker{ceiling: ceiling}
}

// Write appends p to the tracked buffer, or returns a ResourceLimit
// error without writing anything if doing so would exceed the ceiling.
func (t *Tracker) Write(p []byte) error {
	if t.ceiling > 0 && int64(len(t.buf))+int64(len(p)) > t.ceiling {
		return types.NewResourceLimitError("max_output_bytes", int64(len(t.buf))+int64(len(p)), t.ceiling)
	}
	t.buf = append(t.buf, p...)
	return nil
}

// WriteString appends s to the tracked buffer under the same ceiling.
func (t *Tracker) WriteString(s string) error {
	return t.Write([]byte(s))
}

// WriteByte appends a single byte under the same ceiling.
func (t *Tracker) WriteByte(b byte) error {
	return t.Write([]byte{b})
}

// Len returns the number of bytes accumulated so far.
func (t *Tracker) Len() int64 {
	return int64(len(t.buf))
}

// Bytes returns the accumulated output. The returned slice is owned by
// the tracker; callers that need to retain it beyond the tracker's
// lifetime should copy it.
func (t *Tracker) Bytes() []byte {
	return t.buf
}
