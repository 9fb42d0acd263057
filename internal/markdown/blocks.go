// Package markdown implements the Markdown side of the converter: a
// two-phase block-then-inline parser and a generator that serializes a
// model.Document back to Markdown text.
package markdown

import (
	"regexp"
	"strings"

	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

var (
	atxHeadingRe  = regexp.MustCompile(`^(#{1,6})(?:[ \t]+(.*?))?[ \t]*#*[ \t]*$`)
	thematicBreak = regexp.MustCompile(`^ {0,3}((-[ \t]*){3,}|(_[ \t]*){3,}|(\*[ \t]*){3,})$`)
	setextH1Re    = regexp.MustCompile(`^ {0,3}=+[ \t]*$`)
	setextH2Re    = regexp.MustCompile(`^ {0,3}-+[ \t]*$`)
	orderedItemRe = regexp.MustCompile(`^( *)(\d{1,9})[.)][ \t]+(.*)$`)
	bulletItemRe  = regexp.MustCompile(`^( *)[-*+][ \t]+(.*)$`)
	tableSepRe    = regexp.MustCompile(`^ {0,3}\|?[ \t]*:?-+:?[ \t]*(\|[ \t]*:?-+:?[ \t]*)*\|?[ \t]*$`)
	fenceRe       = regexp.MustCompile("^( {0,3})(`{3,}|~{3,}) *([^`\\s]*) *$")
	blockquoteRe  = regexp.MustCompile(`^ {0,3}>[ \t]?(.*)$`)
)

// Parse scans input into a model.Document. Block structure is resolved
// first; inline content within each block's raw text is resolved by the
// inline scanner in a second pass.
func Parse(input []byte, cfg policy.Config) (*model.Document, *types.DiagnosticReport, error) {
	report := types.NewDiagnosticReport()

	if cfg.MaxInputBytes > 0 && int64(len(input)) > cfg.MaxInputBytes {
		return nil, nil, types.NewResourceLimitError("max_input_bytes", int64(len(input)), cfg.MaxInputBytes)
	}
	if len(input) == 0 {
		return &model.Document{}, report, nil
	}

	normalized := strings.ReplaceAll(string(input), "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(normalized, "\n"), "\n")

	blocks, err := parseBlocks(lines, 1, cfg, report)
	if err != nil {
		return nil, report, err
	}

	title := ""
	if len(blocks) > 0 {
		if h, ok := blocks[0].(*model.Heading); ok && h.Level == 1 {
			title = plainText(h.Inlines)
		}
	}

	doc := &model.Document{Blocks: blocks, Metadata: model.Metadata{Title: title}}
	return doc, report, nil
}

func plainText(inlines []model.Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		if t, ok := in.(*model.Text); ok {
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

// parseBlocks walks lines producing a flat slice of blocks at the given
// nesting depth (1 = top level), recursing into blockquotes.
func parseBlocks(lines []string, depth int, cfg policy.Config, report *types.DiagnosticReport) ([]model.Block, error) {
	if cfg.MaxNestingDepth > 0 && depth > cfg.MaxNestingDepth {
		return nil, types.NewResourceLimitError("max_nesting_depth", int64(depth), int64(cfg.MaxNestingDepth))
	}

	var blocks []model.Block
	i := 0
	for i < len(lines) {
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			i++
			continue
		}

		atxMatch := atxHeadingRe.FindStringSubmatch(line)

		switch {
		case fenceRe.MatchString(line):
			block, next := scanFencedCode(lines, i)
			blocks = append(blocks, block)
			i = next

		case isIndentedCode(line):
			block, next := scanIndentedCode(lines, i)
			blocks = append(blocks, block)
			i = next

		case atxMatch != nil:
			level := len(atxMatch[1])
			inlines, ierr := parseInlines(atxMatch[2], cfg, report)
			if ierr != nil {
				return nil, ierr
			}
			blocks = append(blocks, &model.Heading{Level: level, Inlines: inlines})
			i++

		case thematicBreak.MatchString(line):
			blocks = append(blocks, &model.HorizontalRule{})
			i++

		case blockquoteRe.MatchString(line):
			quoteLines, next := scanBlockquote(lines, i)
			inner, err := parseBlocks(quoteLines, depth+1, cfg, report)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, &model.BlockQuote{Inlines: flattenToInlines(inner)})
			i = next

		case bulletItemRe.MatchString(line) || orderedItemRe.MatchString(line):
			items, next, err := scanList(lines, i, depth, cfg, report)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, items...)
			i = next

		case looksLikeTableHeader(lines, i):
			block, next, terr := scanTable(lines, i, cfg, report)
			if terr != nil {
				return nil, terr
			}
			blocks = append(blocks, block)
			i = next

		default:
			text, setextLevel, next := scanParagraph(lines, i)
			inlines, ierr := parseInlines(text, cfg, report)
			if ierr != nil {
				return nil, ierr
			}
			if setextLevel > 0 {
				blocks = append(blocks, &model.Heading{Level: setextLevel, Inlines: inlines})
			} else {
				blocks = append(blocks, &model.Paragraph{Inlines: inlines})
			}
			i = next
		}
	}
	return blocks, nil
}

// flattenToInlines renders a small block slice (used only for simple
// blockquote bodies) back into an inline run, joining block boundaries
// with a hard line break.
func flattenToInlines(blocks []model.Block) []model.Inline {
	var out []model.Inline
	for i, b := range blocks {
		if i > 0 {
			out = append(out, &model.LineBreak{Hard: true})
		}
		switch v := b.(type) {
		case *model.Paragraph:
			out = append(out, v.Inlines...)
		case *model.Heading:
			out = append(out, v.Inlines...)
		case *model.BlockQuote:
			out = append(out, v.Inlines...)
		}
	}
	return out
}

func isIndentedCode(line string) bool {
	if len(line) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if line[i] != ' ' {
			return false
		}
	}
	return strings.TrimSpace(line) != ""
}

func scanIndentedCode(lines []string, start int) (model.Block, int) {
	var out []string
	i := start
	for i < len(lines) && (isIndentedCode(lines[i]) || strings.TrimSpace(lines[i]) == "") {
		if strings.TrimSpace(lines[i]) == "" {
			out = append(out, "")
		} else {
			out = append(out, lines[i][4:])
		}
		i++
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return &model.CodeBlock{Text: strings.Join(out, "\n")}, i
}

func scanFencedCode(lines []string, start int) (model.Block, int) {
	m := fenceRe.FindStringSubmatch(lines[start])
	fenceChar := m[2][0]
	fenceLen := len(m[2])
	lang := m[3]

	var out []string
	i := start + 1
	for i < len(lines) {
		trimmed := strings.TrimLeft(lines[i], " ")
		if len(trimmed) >= fenceLen && allByte(trimmed[:fenceLen], fenceChar) && strings.TrimSpace(trimmed[fenceLen:]) == "" {
			i++
			break
		}
		out = append(out, lines[i])
		i++
	}
	return &model.CodeBlock{Text: strings.Join(out, "\n"), Language: lang}, i
}

func allByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}

func scanBlockquote(lines []string, start int) ([]string, int) {
	var out []string
	i := start
	for i < len(lines) {
		if m := blockquoteRe.FindStringSubmatch(lines[i]); m != nil {
			out = append(out, m[1])
			i++
			continue
		}
		if strings.TrimSpace(lines[i]) == "" {
			break
		}
		// lazy continuation: a following non-blank, non-'>' line belongs
		// to the quote's last paragraph.
		out = append(out, lines[i])
		i++
	}
	return out, i
}

// endsWithHardBreak reports whether a source line, by CommonMark rule,
// forces a hard line break after it: two or more trailing spaces, or a
// trailing backslash.
func endsWithHardBreak(line string) bool {
	if strings.HasSuffix(line, "  ") {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(line, " "), "\\")
}

// scanParagraph collects a lazy-continuation paragraph starting at
// lines[start]. If the line immediately following the paragraph's first
// line is a setext underline ("===" or "---"), it returns that single
// line as a heading instead, with setextLevel set to 1 or 2. Lines
// joined where the prior line forced a hard break are joined with
// hardBreakMarker instead of a plain space, so parseInlines can turn
// that join back into a LineBreak{Hard: true}.
func scanParagraph(lines []string, start int) (text string, setextLevel int, next int) {
	i := start

	if j := i + 1; j < len(lines) {
		if setextH1Re.MatchString(lines[j]) {
			return strings.TrimSpace(lines[i]), 1, j + 1
		}
		if setextH2Re.MatchString(lines[j]) && !bulletItemRe.MatchString(lines[i]) {
			return strings.TrimSpace(lines[i]), 2, j + 1
		}
	}

	var parts []string
	var breaks []bool
	parts = append(parts, strings.TrimSpace(lines[i]))
	breaks = append(breaks, endsWithHardBreak(lines[i]))
	i++
	for i < len(lines) {
		l := lines[i]
		if strings.TrimSpace(l) == "" || atxHeadingRe.MatchString(l) || thematicBreak.MatchString(l) ||
			bulletItemRe.MatchString(l) || orderedItemRe.MatchString(l) || blockquoteRe.MatchString(l) ||
			fenceRe.MatchString(l) || setextH1Re.MatchString(l) || setextH2Re.MatchString(l) {
			break
		}
		parts = append(parts, strings.TrimSpace(l))
		breaks = append(breaks, endsWithHardBreak(l))
		i++
	}

	var b strings.Builder
	for idx, p := range parts {
		if idx > 0 {
			if breaks[idx-1] {
				b.WriteRune(hardBreakMarker)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(p)
	}
	return b.String(), 0, i
}

func scanList(lines []string, start int, depth int, cfg policy.Config, report *types.DiagnosticReport) ([]model.Block, int, error) {
	var out []model.Block
	i := start
	for i < len(lines) {
		line := lines[i]
		var indent string
		var ordered bool
		var content string

		if m := orderedItemRe.FindStringSubmatch(line); m != nil {
			indent, ordered, content = m[1], true, m[3]
		} else if m := bulletItemRe.FindStringSubmatch(line); m != nil {
			indent = m[1]
			content = m[2]
		} else {
			break
		}

		itemDepth := len(indent)/2 + 1
		if cfg.MaxListDepth > 0 && itemDepth > cfg.MaxListDepth {
			return nil, 0, types.NewResourceLimitError("max_list_depth", int64(itemDepth), int64(cfg.MaxListDepth))
		}

		// Gather the following non-blank lines that are not list items
		// themselves, whatever their indentation, so a multi-line item
		// still reads as one inline run.
		itemLines := []string{content}
		i++
		for i < len(lines) {
			l := lines[i]
			if strings.TrimSpace(l) == "" {
				break
			}
			if bulletItemRe.MatchString(l) || orderedItemRe.MatchString(l) {
				break
			}
			itemLines = append(itemLines, strings.TrimSpace(l))
			i++
		}

		inlines, ierr := parseInlines(strings.Join(itemLines, " "), cfg, report)
		if ierr != nil {
			return nil, 0, ierr
		}
		out = append(out, &model.ListItem{
			Inlines: inlines,
			Ordered: ordered,
			Depth:   itemDepth,
		})

		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			if i+1 < len(lines) && (bulletItemRe.MatchString(lines[i+1]) || orderedItemRe.MatchString(lines[i+1])) {
				i++
				continue
			}
			break
		}
	}
	return out, i, nil
}

func looksLikeTableHeader(lines []string, i int) bool {
	if !strings.Contains(lines[i], "|") {
		return false
	}
	if i+1 >= len(lines) {
		return false
	}
	return tableSepRe.MatchString(lines[i+1]) && strings.Contains(lines[i+1], "-")
}

func scanTable(lines []string, start int, cfg policy.Config, report *types.DiagnosticReport) (model.Block, int, error) {
	header := splitTableRow(lines[start])
	i := start + 2 // skip header + separator row

	var rows []model.Row
	headerRow := model.Row{}
	for _, cell := range header {
		inlines, err := parseInlines(cell, cfg, report)
		if err != nil {
			return nil, 0, err
		}
		headerRow.Cells = append(headerRow.Cells, model.Cell{Inlines: inlines})
	}
	rows = append(rows, headerRow)

	for i < len(lines) {
		l := lines[i]
		if strings.TrimSpace(l) == "" || !strings.Contains(l, "|") {
			break
		}
		cells := splitTableRow(l)
		row := model.Row{}
		for _, cell := range cells {
			inlines, err := parseInlines(cell, cfg, report)
			if err != nil {
				return nil, 0, err
			}
			row.Cells = append(row.Cells, model.Cell{Inlines: inlines})
		}
		rows = append(rows, row)
		i++
	}
	return &model.Table{Rows: rows}, i, nil
}

func splitTableRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range trimmed {
		if escaped {
			cur.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			cur.WriteRune(r)
			escaped = true
			continue
		}
		if r == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}
