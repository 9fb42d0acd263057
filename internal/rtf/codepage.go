package rtf

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// codepageDecoder maps an RTF \ansicpg code page number to the
// encoding.Encoding that decodes its 8-bit bytes. Only the code pages a
// Windows RTF writer commonly emits are covered; an unrecognized page
// falls back to Windows-1252, which is what \ansi (no \ansicpg) means.
func codepageDecoder(cp int64) encoding.Encoding {
	switch cp {
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1252:
		return charmap.Windows1252
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1257:
		return charmap.Windows1257
	case 28591, 0:
		return charmap.ISO8859_1
	default:
		return charmap.Windows1252
	}
}

// decodeByte decodes a single \'HH byte under the given code page into
// the rune it represents.
func decodeByte(cp int64, b byte) rune {
	if b < 0x80 {
		return rune(b)
	}
	dec := codepageDecoder(cp)
	r, _ := dec.NewDecoder().Bytes([]byte{b})
	if len(r) == 0 {
		return rune(b)
	}
	out := []rune(string(r))
	if len(out) == 0 {
		return rune(b)
	}
	return out[0]
}
