package rtf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-rtfmd/rtfmd/internal/outlimit"
	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// headingSizes maps heading level (1..6) to the half-point font size the
// generator emits for it.
var headingSizes = [7]int{0, 48, 36, 32, 28, 24, 22}

// gen accumulates RTF output with a sticky first error, so the call
// sites below can chain writes without checking every one.
type gen struct {
	tr  *outlimit.Tracker
	err error
}

func (g *gen) write(s string) {
	if g.err != nil {
		return
	}
	g.err = g.tr.WriteString(s)
}

func (g *gen) writeByte(b byte) {
	if g.err != nil {
		return
	}
	g.err = g.tr.WriteByte(b)
}

// Generate serializes doc to RTF under cfg, enforcing max_output_bytes
// via an outlimit.Tracker.
func Generate(doc *model.Document, cfg policy.Config) ([]byte, *types.DiagnosticReport, error) {
	report := types.NewDiagnosticReport()
	g := &gen{tr: outlimit.NewTracker(cfg.MaxOutputBytes)}

	g.write(`{\rtf1\ansi\deff0`)
	g.write(`{\fonttbl{\f0\fswiss Helvetica;}{\f1\fmodern Courier New;}}`)
	g.write(`{\colortbl;\red0\green0\blue0;}`)
	if doc.Metadata.Title != "" {
		g.write(`{\info{\title `)
		g.writeEscapedText(doc.Metadata.Title)
		g.write(`}}`)
	}
	g.write(`\fs24` + "\n")

	for _, b := range doc.Blocks {
		g.genBlock(b, report)
		if g.err != nil {
			break
		}
	}
	g.writeByte('}')

	if g.err != nil {
		return nil, report, g.err
	}
	return g.tr.Bytes(), report, nil
}

func (g *gen) genBlock(b model.Block, report *types.DiagnosticReport) {
	switch v := b.(type) {
	case *model.Heading:
		level := v.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		g.write(fmt.Sprintf(`\pard\fs%d\b `, headingSizes[level]))
		g.emitInlines(v.Inlines)
		g.write(`\b0\par` + "\n")

	case *model.Paragraph:
		g.write(`\pard` + alignmentControl(v.Alignment) + ` `)
		g.emitInlines(v.Inlines)
		g.write(`\par` + "\n")

	case *model.ListItem:
		depth := v.Depth
		if depth < 1 {
			depth = 1
		}
		indent := 720 * depth
		if v.Ordered {
			g.write(fmt.Sprintf(`\pard\fi-360\li%d 1.\tab `, indent))
		} else {
			g.write(fmt.Sprintf(`\pard\fi-360\li%d\bullet `, indent))
		}
		g.emitInlines(v.Inlines)
		g.write(`\par` + "\n")

	case *model.HorizontalRule:
		g.write(`\pard\brdrb\brdrs\brdrw10\brsp20 \par` + "\n")

	case *model.CodeBlock:
		g.write(`\pard\f1\fs20 `)
		lines := strings.Split(v.Text, "\n")
		for i, line := range lines {
			g.writeEscapedText(line)
			if i < len(lines)-1 {
				g.write(`\line `)
			}
		}
		g.write(`\f0\fs24\par` + "\n")

	case *model.BlockQuote:
		g.write(`\pard\li360 `)
		g.emitInlines(v.Inlines)
		g.write(`\par` + "\n")

	case *model.Table:
		g.genTable(v)

	default:
		g.err = types.ErrInternal
	}
}

func alignmentControl(a model.Alignment) string {
	switch a {
	case model.AlignRight:
		return `\qr`
	case model.AlignCenter:
		return `\qc`
	case model.AlignJustify:
		return `\qj`
	default:
		return ""
	}
}

func (g *gen) genTable(t *model.Table) {
	width := 0
	for _, row := range t.Rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}
	if width == 0 {
		return
	}
	cellWidth := 9000 / width

	for _, row := range t.Rows {
		g.write(`\trowd`)
		for i := 1; i <= width; i++ {
			g.write(`\cellx` + strconv.Itoa(cellWidth*i))
		}
		g.write("\n")
		for _, cell := range row.Cells {
			g.write(`\intbl `)
			g.emitInlines(cell.Inlines)
			g.write(`\cell `)
		}
		g.write(`\row` + "\n")
	}
}

func (g *gen) emitInlines(inlines []model.Inline) {
	for _, in := range inlines {
		if g.err != nil {
			return
		}
		switch v := in.(type) {
		case *model.Text:
			g.writeEscapedText(v.Value)
		case *model.Emphasis:
			open, close := emphasisTags(v)
			g.write(open)
			g.emitInlines(v.Inlines)
			g.write(close)
		case *model.Link:
			g.emitInlines(v.Inlines)
			g.write(` (`)
			g.writeEscapedText(v.Destination)
			g.write(`)`)
		case *model.Image:
			g.emitInlines(v.Alt)
		case *model.InlineCode:
			g.write(`\f1 `)
			g.writeEscapedText(v.Text)
			g.write(`\f0 `)
		case *model.LineBreak:
			g.write(`\line `)
		case *model.CharacterRef:
			g.writeRune(v.Codepoint)
		}
	}
}

func emphasisTags(e *model.Emphasis) (open, close string) {
	var ob, cb strings.Builder
	if e.Bold {
		ob.WriteString(`\b `)
		cb.WriteString(`\b0 `)
	}
	if e.Italic {
		ob.WriteString(`\i `)
		cb.WriteString(`\i0 `)
	}
	if e.Underline {
		ob.WriteString(`\ul `)
		cb.WriteString(`\ulnone `)
	}
	if e.Strikethrough {
		ob.WriteString(`\strike `)
		cb.WriteString(`\strike0 `)
	}
	return ob.String(), cb.String()
}

// writeEscapedText writes s with RTF escaping: backslash/braces are
// backslash-escaped, bytes in [0x80,0xFF] become \'HH, and codepoints
// above U+00FF become \uN? with a literal '?' placeholder (the skip-1
// replacement byte implied by the default \uc1).
func (g *gen) writeEscapedText(s string) {
	for _, r := range s {
		if g.err != nil {
			return
		}
		switch r {
		case '\\':
			g.write(`\\`)
		case '{':
			g.write(`\{`)
		case '}':
			g.write(`\}`)
		case '\n':
			g.write(`\line `)
		default:
			g.writeRune(r)
		}
	}
}

func (g *gen) writeRune(r rune) {
	switch {
	case r == '\\' || r == '{' || r == '}':
		g.writeEscapedText(string(r))
	case r < 0x80:
		g.writeByte(byte(r))
	case r <= 0xFF:
		g.write(fmt.Sprintf(`\'%02x`, r))
	case r <= 0xFFFF:
		g.write(fmt.Sprintf(`\u%d?`, toSigned16(uint16(r))))
	default:
		hi, lo := utf16.EncodeRune(r)
		g.write(fmt.Sprintf(`\u%d?`, toSigned16(uint16(hi))))
		g.write(fmt.Sprintf(`\u%d?`, toSigned16(uint16(lo))))
	}
}

func toSigned16(u uint16) int32 {
	v := int32(u)
	if v >= 0x8000 {
		v -= 0x10000
	}
	return v
}
