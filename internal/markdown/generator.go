package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rtfmd/rtfmd/internal/outlimit"
	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// escapedPunct is the set of ASCII characters that trigger Markdown
// syntax on the inline scanner's side; a Text node carrying one of
// these verbatim (e.g. text produced by the RTF parser) must have it
// escaped so the round trip doesn't invent structure that wasn't there.
const escapedPunct = "\\`*_[]<>~|"

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

// Generate serializes doc to Markdown text.
func Generate(doc *model.Document, cfg policy.Config) ([]byte, *types.DiagnosticReport, error) {
	report := types.NewDiagnosticReport()
	g := &gen{tr: outlimit.NewTracker(cfg.MaxOutputBytes)}

	orderedCounters := map[int]int{}
	lastListDepth := 0

	for idx, b := range doc.Blocks {
		if g.err != nil {
			break
		}
		if _, isItem := b.(*model.ListItem); !isItem {
			orderedCounters = map[int]int{}
			lastListDepth = 0
		}
		g.genBlock(b, idx, doc.Blocks, orderedCounters, &lastListDepth, report)
	}
	if g.err != nil {
		return nil, report, g.err
	}
	return g.tr.Bytes(), report, nil
}

func (g *gen) genBlock(b model.Block, idx int, all []model.Block, orderedCounters map[int]int, lastListDepth *int, report *types.DiagnosticReport) {
	switch v := b.(type) {
	case *model.Heading:
		level := v.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		g.write(strings.Repeat("#", level))
		g.write(" ")
		g.emitInlines(v.Inlines)
		g.write("\n\n")

	case *model.Paragraph:
		g.emitInlines(v.Inlines)
		g.write("\n\n")

	case *model.ListItem:
		if v.Depth < *lastListDepth {
			for d := range orderedCounters {
				if d > v.Depth {
					delete(orderedCounters, d)
				}
			}
		}
		*lastListDepth = v.Depth
		indent := strings.Repeat("  ", v.Depth-1)
		g.write(indent)
		if v.Ordered {
			orderedCounters[v.Depth]++
			g.write(strconv.Itoa(orderedCounters[v.Depth]))
			g.write(". ")
		} else {
			g.write("- ")
		}
		g.emitInlines(v.Inlines)
		g.write("\n")
		if idx == len(all)-1 {
			g.write("\n")
		} else if _, next := all[idx+1].(*model.ListItem); !next {
			g.write("\n")
		}

	case *model.HorizontalRule:
		g.write("---\n\n")

	case *model.CodeBlock:
		fence := "```"
		if strings.Contains(v.Text, "```") {
			fence = "~~~"
		}
		g.write(fence)
		g.write(v.Language)
		g.write("\n")
		g.write(v.Text)
		g.write("\n")
		g.write(fence)
		g.write("\n\n")

	case *model.BlockQuote:
		var inner strings.Builder
		ig := &gen{tr: outlimit.NewTracker(0)}
		ig.emitInlines(v.Inlines)
		if ig.err != nil {
			g.err = ig.err
			return
		}
		for _, line := range strings.Split(string(ig.tr.Bytes()), "\n") {
			inner.WriteString("> ")
			inner.WriteString(line)
			inner.WriteString("\n")
		}
		g.write(inner.String())
		g.write("\n")

	case *model.Table:
		g.genTable(v)

	default:
		g.err = types.ErrInternal
	}
}

func (g *gen) genTable(t *model.Table) {
	if len(t.Rows) == 0 {
		return
	}
	header := t.Rows[0]
	g.write("|")
	for _, cell := range header.Cells {
		g.write(" ")
		g.emitInlines(cell.Inlines)
		g.write(" |")
	}
	g.write("\n|")
	for range header.Cells {
		g.write(" --- |")
	}
	g.write("\n")
	for _, row := range t.Rows[1:] {
		g.write("|")
		for _, cell := range row.Cells {
			g.write(" ")
			g.emitInlines(cell.Inlines)
			g.write(" |")
		}
		g.write("\n")
	}
	g.write("\n")
}

func (g *gen) emitInlines(inlines []model.Inline) {
	for _, in := range inlines {
		if g.err != nil {
			return
		}
		switch v := in.(type) {
		case *model.Text:
			g.writeEscaped(v.Value)

		case *model.Emphasis:
			open, close := emphasisDelims(v)
			g.write(open)
			g.emitInlines(v.Inlines)
			g.write(close)

		case *model.Link:
			g.write("[")
			g.emitInlines(v.Inlines)
			g.write("](")
			g.write(v.Destination)
			if v.Title != "" {
				g.write(` "`)
				g.write(v.Title)
				g.write(`"`)
			}
			g.write(")")

		case *model.Image:
			g.write("![")
			g.emitInlines(v.Alt)
			g.write("](")
			g.write(v.Source)
			g.write(")")

		case *model.InlineCode:
			fence := "`"
			if strings.Contains(v.Text, "`") {
				fence = "``"
			}
			g.write(fence)
			g.write(v.Text)
			g.write(fence)

		case *model.LineBreak:
			if v.Hard {
				g.write("  \n")
			} else {
				g.write(" ")
			}

		case *model.CharacterRef:
			g.write(fmt.Sprintf("&#%d;", v.Codepoint))

		default:
			g.err = types.ErrInternal
		}
	}
}

// emphasisDelims composes open/close delimiters for whatever
// combination of flags an Emphasis node carries. Underline has no
// native Markdown syntax, so it rides on the <u> HTML passthrough
// every GFM renderer honors.
func emphasisDelims(e *model.Emphasis) (open, close string) {
	if e.Strikethrough {
		open, close = "~~"+open, close+"~~"
	}
	if e.Bold {
		open, close = "**"+open, close+"**"
	}
	if e.Italic {
		open, close = "*"+open, close+"*"
	}
	if e.Underline {
		open, close = "<u>"+open, close+"</u>"
	}
	return open, close
}

func (g *gen) writeEscaped(s string) {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(escapedPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	g.write(b.String())
}
