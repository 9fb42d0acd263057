package rtf

import "strings"

// blockedDestinations names destination control words whose entire body
// is treated as dangerous: object embedding, OLE links, and legacy
// picture-binary payloads. \pict's destination itself is tolerated (its
// text is a side channel the parser already skips); only the image
// payload bytes are the concern, so \pict is not listed here — it is
// handled structurally by the destination-routing logic instead.
var blockedDestinations = map[string]struct{}{
	"object":     {},
	"objemb":     {},
	"objlink":    {},
	"objautlink": {},
	"objocx":     {},
	"objdata":    {},
	"objclass":   {},
}

// blockedFieldInstructionPrefixes names \field instruction prefixes
// that reach outside the document (file inclusion, macro buttons, DDE
// links).
var blockedFieldInstructionPrefixes = []string{
	"INCLUDETEXT",
	"INCLUDEPICTURE",
	"MACROBUTTON",
	"DDEAUTO",
	"DDE",
}

// IsBlockedDestination reports whether name is a destination whose body
// is always dangerous regardless of instruction text.
func IsBlockedDestination(name string) bool {
	_, ok := blockedDestinations[name]
	return ok
}

// IsBlockedFieldInstruction reports whether a \field's instruction text
// begins with a dangerous directive.
func IsBlockedFieldInstruction(instruction string) bool {
	trimmed := strings.TrimSpace(instruction)
	upper := strings.ToUpper(trimmed)
	for _, prefix := range blockedFieldInstructionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// IsBlockedGenerator reports whether a \*\generator destination's text
// names an executable payload rather than a plain product string: text
// containing ".exe", ".dll" or ".bat" (in any letter case) is treated as
// suspicious; a bare product name ("Microsoft Word 16.0") is not.
func IsBlockedGenerator(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, ".exe") || strings.Contains(lower, ".dll") || strings.Contains(lower, ".bat")
}

// IsBlockedTemplate reports whether a \*\template destination points at
// an external path rather than naming a local style.
func IsBlockedTemplate(text string) bool {
	return strings.ContainsAny(text, `/\`) || strings.Contains(text, "://")
}
