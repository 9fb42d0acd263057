package markdown

import (
	"strings"
	"unicode"

	"github.com/go-rtfmd/rtfmd/internal/uri"
	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// hardBreakMarker stands in for a hard line break inside the flattened
// text a block scanner hands to parseInlines: scanParagraph inserts it
// in place of the join between two source lines when the first ends in
// two or more trailing spaces or a backslash.
const hardBreakMarker = ' '

// parseInlines resolves the inline content of one block's flattened
// text, tracking active emphasis the way internal/rtf's
// formattingContext tracks bold/italic/strike while scanning control
// words — the Markdown and RTF scanners mirror each other by design,
// differing only in what marks a span open and closed.
func parseInlines(text string, cfg policy.Config, report *types.DiagnosticReport) ([]model.Inline, error) {
	s := &inlineScanner{cfg: cfg, report: report}
	out, err := s.parseSpan([]rune(text))
	return out, err
}

type inlineScanner struct {
	cfg    policy.Config
	report *types.DiagnosticReport
}

func (s *inlineScanner) parseSpan(runes []rune) ([]model.Inline, error) {
	var out []model.Inline
	var buf []rune

	flush := func() {
		if len(buf) > 0 {
			out = append(out, &model.Text{Value: string(buf)})
			buf = nil
		}
	}

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case r == hardBreakMarker:
			flush()
			out = append(out, &model.LineBreak{Hard: true})
			i++

		case r == '\\' && i+1 < len(runes) && isASCIIPunct(runes[i+1]):
			buf = append(buf, runes[i+1])
			i += 2

		case r == '&':
			if ref, n := scanCharacterReference(runes, i); ref != nil {
				flush()
				out = append(out, ref)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '`':
			if node, n := scanCodeSpan(runes, i); node != nil {
				flush()
				out = append(out, node)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '!' && i+1 < len(runes) && runes[i+1] == '[':
			nodes, n, err := s.scanImage(runes, i)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				flush()
				out = append(out, nodes...)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '[':
			nodes, n, err := s.scanLink(runes, i)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				flush()
				out = append(out, nodes...)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '<':
			node, n, err := s.scanAutolink(runes, i)
			if err != nil {
				return nil, err
			}
			if node != nil {
				flush()
				out = append(out, node)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '*' || r == '_':
			node, n, err := s.scanEmphasis(runes, i)
			if err != nil {
				return nil, err
			}
			if node != nil {
				flush()
				out = append(out, node)
				i += n
			} else {
				buf = append(buf, r)
				i++
			}

		case r == '~' && i+1 < len(runes) && runes[i+1] == '~':
			node, n, err := s.scanStrike(runes, i)
			if err != nil {
				return nil, err
			}
			if node != nil {
				flush()
				out = append(out, node)
				i += n
			} else {
				buf = append(buf, r, r)
				i += 2
			}

		default:
			buf = append(buf, r)
			i++
		}
	}
	flush()
	return out, nil
}

func isASCIIPunct(r rune) bool {
	return r < 128 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

func allRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c != r {
			return false
		}
	}
	return true
}

func scanCodeSpan(runes []rune, i int) (model.Inline, int) {
	j := i
	for j < len(runes) && runes[j] == '`' {
		j++
	}
	n := j - i
	for k := j; k+n <= len(runes); k++ {
		if allRune(runes[k:k+n], '`') {
			inner := strings.TrimSpace(string(runes[j:k]))
			return &model.InlineCode{Text: inner}, (k + n) - i
		}
	}
	return nil, 0
}

// scanEmphasis handles a run of `*` or `_`: a run of length >=2 opens a
// bold span, a run of exactly 1 opens an italic span. It finds the
// nearest run of the same marker and width and recurses into the
// content between, so "**bold *and italic* text**" composes via
// nesting. A closing run longer than the opener is not split, so
// "**bold *and italic***" forms no emphasis and stays literal text.
func (s *inlineScanner) scanEmphasis(runes []rune, i int) (model.Inline, int, error) {
	marker := runes[i]
	j := i
	for j < len(runes) && runes[j] == marker {
		j++
	}
	runLen := j - i
	width := 1
	if runLen >= 2 {
		width = 2
	}
	if i+width >= len(runes) || isSpace(runes[i+width]) {
		return nil, 0, nil
	}

	closeIdx := findClosingRun(runes, i+width, marker, width)
	if closeIdx < 0 {
		return nil, 0, nil
	}
	inner := runes[i+width : closeIdx]
	if len(inner) == 0 {
		return nil, 0, nil
	}
	children, err := s.parseSpan(inner)
	if err != nil {
		return nil, 0, err
	}
	em := &model.Emphasis{Inlines: children}
	if width == 2 {
		em.Bold = true
	} else {
		em.Italic = true
	}
	return em, (closeIdx + width) - i, nil
}

func (s *inlineScanner) scanStrike(runes []rune, i int) (model.Inline, int, error) {
	if i+2 >= len(runes) || isSpace(runes[i+2]) {
		return nil, 0, nil
	}
	closeIdx := findClosingRun(runes, i+2, '~', 2)
	if closeIdx < 0 {
		return nil, 0, nil
	}
	inner := runes[i+2 : closeIdx]
	if len(inner) == 0 {
		return nil, 0, nil
	}
	children, err := s.parseSpan(inner)
	if err != nil {
		return nil, 0, err
	}
	return &model.Emphasis{Strikethrough: true, Inlines: children}, (closeIdx + 2) - i, nil
}

// findClosingRun looks, from start, for the next run of exactly width
// copies of marker; a longer run is skipped past rather than matched,
// so "**a***" doesn't close "**" one character early.
func findClosingRun(runes []rune, start int, marker rune, width int) int {
	k := start
	for k+width <= len(runes) {
		if runes[k] != marker {
			k++
			continue
		}
		runEnd := k
		for runEnd < len(runes) && runes[runEnd] == marker {
			runEnd++
		}
		if runEnd-k == width {
			return k
		}
		k = runEnd
	}
	return -1
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func scanCharacterReference(runes []rune, i int) (model.Inline, int) {
	j := i + 1
	if j < len(runes) && runes[j] == '#' {
		j++
		hex := j < len(runes) && (runes[j] == 'x' || runes[j] == 'X')
		if hex {
			j++
		}
		start := j
		for j < len(runes) && runes[j] != ';' && j-start < 8 {
			j++
		}
		if j >= len(runes) || runes[j] != ';' || j == start {
			return nil, 0
		}
		digits := string(runes[start:j])
		base := 10
		if hex {
			base = 16
		}
		var v int64
		for _, c := range digits {
			d := hexDigitValue(c)
			if d < 0 || (base == 10 && d > 9) {
				return nil, 0
			}
			v = v*int64(base) + int64(d)
		}
		return &model.CharacterRef{Codepoint: rune(v)}, j + 1 - i
	}

	start := j
	for j < len(runes) && j-start < 10 && unicode.IsLetter(runes[j]) {
		j++
	}
	if j >= len(runes) || runes[j] != ';' || j == start {
		return nil, 0
	}
	name := string(runes[start:j])
	if r, ok := namedEntities[name]; ok {
		return &model.CharacterRef{Codepoint: r}, j + 1 - i
	}
	return nil, 0
}

func hexDigitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

var namedEntities = map[string]rune{
	"amp":   '&',
	"lt":    '<',
	"gt":    '>',
	"quot":  '"',
	"apos":  '\'',
	"nbsp":  ' ',
	"mdash": '—',
	"ndash": '–',
}

// scanLink handles "[text](dest \"title\")". Returns nil with no error
// when the syntax doesn't resolve to a link; returns an error when the
// destination is present but blocked under the active security posture.
// scanLink returns the inline nodes to splice in at i and how many
// runes they consumed. A blocked destination under Standard posture
// still consumes the whole "[text](dest)" span but keeps only the
// display inlines, dropping the destination entirely rather than
// falling back to the literal bracket syntax (which would leak the
// blocked URL into the rendered text).
func (s *inlineScanner) scanLink(runes []rune, i int) ([]model.Inline, int, error) {
	closeBracket := findMatching(runes, i, '[', ']')
	if closeBracket < 0 {
		return nil, 0, nil
	}
	destEnd, dest, title, ok := parseLinkTail(runes, closeBracket+1)
	if !ok {
		return nil, 0, nil
	}
	children, err := s.parseSpan(runes[i+1 : closeBracket])
	if err != nil {
		return nil, 0, err
	}
	if blocked, err := s.checkURI(dest); err != nil {
		return nil, 0, err
	} else if blocked {
		return children, destEnd - i, nil
	}
	return []model.Inline{&model.Link{Inlines: children, Destination: dest, Title: title}}, destEnd - i, nil
}

// scanImage mirrors scanLink: a blocked source keeps the alt-text
// inlines and drops the image wrapper instead of reverting to literal
// bracket syntax.
func (s *inlineScanner) scanImage(runes []rune, i int) ([]model.Inline, int, error) {
	closeBracket := findMatching(runes, i+1, '[', ']')
	if closeBracket < 0 {
		return nil, 0, nil
	}
	destEnd, dest, _, ok := parseLinkTail(runes, closeBracket+1)
	if !ok {
		return nil, 0, nil
	}
	alt, err := s.parseSpan(runes[i+2 : closeBracket])
	if err != nil {
		return nil, 0, err
	}
	if blocked, err := s.checkURI(dest); err != nil {
		return nil, 0, err
	} else if blocked {
		return alt, destEnd - i, nil
	}
	return []model.Inline{&model.Image{Alt: alt, Source: dest}}, destEnd - i, nil
}

func (s *inlineScanner) scanAutolink(runes []rune, i int) (model.Inline, int, error) {
	end := -1
	for k := i + 1; k < len(runes) && k-i < 512; k++ {
		if runes[k] == '>' {
			end = k
			break
		}
		if isSpace(runes[k]) || runes[k] == '<' {
			return nil, 0, nil
		}
	}
	if end < 0 {
		return nil, 0, nil
	}
	content := string(runes[i+1 : end])
	var dest string
	switch {
	case strings.Contains(content, "://"):
		dest = content
	case strings.Contains(content, "@"):
		dest = "mailto:" + content
	default:
		return nil, 0, nil
	}
	if blocked, err := s.checkURI(dest); err != nil {
		return nil, 0, err
	} else if blocked {
		return &model.Text{Value: content}, (end + 1) - i, nil
	}
	return &model.Link{Inlines: []model.Inline{&model.Text{Value: content}}, Destination: dest}, (end + 1) - i, nil
}

// checkURI applies §3's scheme policy: Standard silently drops the
// destination, keeping only the display text (the caller decides what
// "display text" means for its own syntax); Enhanced/Paranoid reject
// the whole document.
func (s *inlineScanner) checkURI(dest string) (blocked bool, err error) {
	if !s.cfg.ValidateURIs {
		return false, nil
	}
	if uri.Validate(dest) {
		return false, nil
	}
	if s.cfg.Posture == policy.PostureStandard {
		s.report.Add(types.Diagnostic{
			Severity: types.SevWarning,
			Category: types.DiagSecurity,
			Offset:   -1,
			Message:  "link destination '" + dest + "' blocked under standard posture",
		})
		return true, nil
	}
	return true, types.NewSecurityError("uri_scheme:"+dest, s.cfg.Posture.String())
}

// findMatching finds the index of the close rune balancing the open
// rune at runes[start], accounting for nesting.
func findMatching(runes []rune, start int, open, close rune) int {
	if start >= len(runes) || runes[start] != open {
		return -1
	}
	depth := 0
	for k := start; k < len(runes); k++ {
		switch runes[k] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

// parseLinkTail parses "(dest \"title\")" starting right after a link's
// closing bracket. Returns the index just past the closing paren.
func parseLinkTail(runes []rune, start int) (end int, dest, title string, ok bool) {
	if start >= len(runes) || runes[start] != '(' {
		return 0, "", "", false
	}
	k := start + 1
	for k < len(runes) && isSpace(runes[k]) {
		k++
	}
	destStart := k
	depth := 0
	for k < len(runes) {
		switch runes[k] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				goto doneDest
			}
			depth--
		case ' ', '\t':
			goto doneDest
		}
		k++
	}
doneDest:
	dest = string(runes[destStart:k])
	for k < len(runes) && isSpace(runes[k]) {
		k++
	}
	if k < len(runes) && (runes[k] == '"' || runes[k] == '\'') {
		quote := runes[k]
		k++
		titleStart := k
		for k < len(runes) && runes[k] != quote {
			k++
		}
		if k >= len(runes) {
			return 0, "", "", false
		}
		title = string(runes[titleStart:k])
		k++
	}
	for k < len(runes) && isSpace(runes[k]) {
		k++
	}
	if k >= len(runes) || runes[k] != ')' {
		return 0, "", "", false
	}
	return k + 1, dest, title, true
}
