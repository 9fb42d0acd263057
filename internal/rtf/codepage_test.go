package rtf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeByteASCIIPassthrough(t *testing.T) {
	assert.Equal(t, 'z', decodeByte(1252, 'z'))
}

func TestDecodeByteWindows1252HighByte(t *testing.T) {
	// 0x93 is a left curly quote in cp1252.
	r := decodeByte(1252, 0x93)
	assert.Equal(t, '“', r)
}

func TestDecodeByteUnknownCodepageFallsBackToWindows1252(t *testing.T) {
	r := decodeByte(99999, 0x93)
	assert.Equal(t, '“', r)
}
