// Package policy defines the resource ceilings and security posture that
// gate every RTF/Markdown conversion. A Config is a plain, copyable value:
// it carries no pointers into shared state and is safe to copy into each
// conversion call without synchronization.
package policy

import "time"

// Posture selects the active control-word/URI blocklist and the
// strictness of unknown-construct handling.
type Posture int

const (
	// PostureStandard recovers from unknown constructs and blocked
	// content by silently discarding the offending group; it never
	// fails the call for those reasons.
	PostureStandard Posture = iota
	// PostureEnhanced is the default posture: blocked constructs and
	// malformed URIs fail the call with a security error.
	PostureEnhanced
	// PostureParanoid additionally rejects unknown control words and
	// applies the tightest resource ceilings.
	PostureParanoid
)

func (p Posture) String() string {
	switch p {
	case PostureStandard:
		return "standard"
	case PostureEnhanced:
		return "enhanced"
	case PostureParanoid:
		return "paranoid"
	default:
		return "unknown"
	}
}

// Config is the immutable-by-convention configuration value threaded
// through a single conversion call. Build one with Standard, Enhanced,
// or Paranoid, then adjust it with the WithX methods, which return a
// modified copy.
type Config struct {
	Posture Posture

	MaxInputBytes  int64
	MaxOutputBytes int64

	MaxNestingDepth int

	// MaxControlWordLength bounds the ASCII-letter run read for an RTF
	// control word name.
	MaxControlWordLength int
	// MaxControlWordParameter bounds the absolute value of a control
	// word's signed decimal parameter.
	MaxControlWordParameter int64

	MaxDocumentNodes int
	MaxListDepth     int

	Deadline time.Duration

	ValidateURIs             bool
	AllowUnknownControlWords bool
	StrictUTF8               bool
}

// WithPosture returns a copy of c with Posture replaced.
func (c Config) WithPosture(p Posture) Config {
	c.Posture = p
	return c
}

// WithMaxInputBytes returns a copy of c with MaxInputBytes replaced.
func (c Config) WithMaxInputBytes(n int64) Config {
	c.MaxInputBytes = n
	return c
}

// WithMaxOutputBytes returns a copy of c with MaxOutputBytes replaced.
func (c Config) WithMaxOutputBytes(n int64) Config {
	c.MaxOutputBytes = n
	return c
}

// WithDeadline returns a copy of c with Deadline replaced.
func (c Config) WithDeadline(d time.Duration) Config {
	c.Deadline = d
	return c
}

// Standard returns the most permissive preset: known-dangerous constructs
// are discarded rather than failed, unknown control words are tolerated,
// and ceilings are generous.
func Standard() Config {
	return Config{
		Posture:                  PostureStandard,
		MaxInputBytes:            64 << 20, // 64 MiB
		MaxOutputBytes:           128 << 20,
		MaxNestingDepth:          512,
		MaxControlWordLength:     32,
		MaxControlWordParameter:  2_147_483_647,
		MaxDocumentNodes:         1_000_000,
		MaxListDepth:             32,
		Deadline:                 30 * time.Second,
		ValidateURIs:             true,
		AllowUnknownControlWords: true,
		StrictUTF8:               false,
	}
}

// Enhanced is the default preset: blocked constructs and rejected URIs
// fail the call; resource ceilings are conservative but practical.
func Enhanced() Config {
	return Config{
		Posture:                  PostureEnhanced,
		MaxInputBytes:            16 << 20, // 16 MiB
		MaxOutputBytes:           32 << 20,
		MaxNestingDepth:          256,
		MaxControlWordLength:     32,
		MaxControlWordParameter:  1_000_000,
		MaxDocumentNodes:         250_000,
		MaxListDepth:             16,
		Deadline:                 10 * time.Second,
		ValidateURIs:             true,
		AllowUnknownControlWords: true,
		StrictUTF8:               false,
	}
}

// Paranoid is the tightest preset: unknown control words are also
// rejected, and every ceiling is at its smallest practical value.
func Paranoid() Config {
	return Config{
		Posture:                  PostureParanoid,
		MaxInputBytes:            4 << 20, // 4 MiB
		MaxOutputBytes:           8 << 20,
		MaxNestingDepth:          64,
		MaxControlWordLength:     24,
		MaxControlWordParameter:  100_000,
		MaxDocumentNodes:         50_000,
		MaxListDepth:             8,
		Deadline:                 3 * time.Second,
		ValidateURIs:             true,
		AllowUnknownControlWords: false,
		StrictUTF8:               true,
	}
}

// PosturePreset looks up a full Config preset by posture name, for hosts
// that only carry a string across a C boundary rather than a native enum.
func PosturePreset(name string) (Config, bool) {
	switch name {
	case "standard":
		return Standard(), true
	case "enhanced":
		return Enhanced(), true
	case "paranoid":
		return Paranoid(), true
	default:
		return Config{}, false
	}
}
