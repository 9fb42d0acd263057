package model

import (
	"fmt"

	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// ValidationError reports a structural-limit violation found while
// validating a Document against a policy.Config.
type ValidationError struct {
	Limit   string
	Current int64
	Maximum int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document limit exceeded: %s is %d (max %d)", e.Limit, e.Current, e.Maximum)
}

// AsTypesError converts a ValidationError into the shared error taxonomy.
func (e *ValidationError) AsTypesError() *types.Error {
	return types.NewResourceLimitError(e.Limit, e.Current, e.Maximum)
}

// Validate checks the document's structural invariants and normalizes
// what can be normalized in place (heading level clamping, table row
// padding/truncation), returning diagnostics for anything recovered and
// an error for anything that cannot be recovered under cfg.
//
// Validate mutates d: it is meant to run once, immediately after a
// parser finishes building the tree and before a generator sees it.
func Validate(d *Document, cfg policy.Config) (*types.DiagnosticReport, error) {
	report := types.NewDiagnosticReport()

	nodes := 0
	depth := 0
	for i := range d.Blocks {
		n, dep, err := validateBlock(d.Blocks[i], cfg, report, 1)
		if err != nil {
			return report, err
		}
		nodes += n
		if dep > depth {
			depth = dep
		}
	}

	if cfg.MaxDocumentNodes > 0 && nodes > cfg.MaxDocumentNodes {
		err := &ValidationError{Limit: "max_document_nodes", Current: int64(nodes), Maximum: int64(cfg.MaxDocumentNodes)}
		return report, err.AsTypesError()
	}

	return report, nil
}

func validateBlock(b Block, cfg policy.Config, report *types.DiagnosticReport, depth int) (nodeCount int, maxDepth int, err error) {
	nodeCount = 1
	maxDepth = depth

	switch v := b.(type) {
	case *Heading:
		if v.Level < 1 {
			v.Level = 1
		}
		if v.Level > 6 {
			report.Add(types.Diagnostic{
				Severity: types.SevInfo,
				Category: types.DiagStructure,
				Offset:   -1,
				Message:  fmt.Sprintf("heading level %d demoted to 6", v.Level),
			})
			v.Level = 6
		}
		n, d := validateInlines(v.Inlines, cfg, report, depth+1)
		nodeCount += n
		maxDepth = max(maxDepth, d)

	case *Paragraph:
		n, d := validateInlines(v.Inlines, cfg, report, depth+1)
		nodeCount += n
		maxDepth = max(maxDepth, d)

	case *ListItem:
		if cfg.MaxListDepth > 0 && v.Depth > cfg.MaxListDepth {
			err = (&ValidationError{Limit: "max_nesting_depth", Current: int64(v.Depth), Maximum: int64(cfg.MaxListDepth)}).AsTypesError()
			return
		}
		n, d := validateInlines(v.Inlines, cfg, report, depth+1)
		nodeCount += n
		maxDepth = max(maxDepth, d)

	case *BlockQuote:
		n, d := validateInlines(v.Inlines, cfg, report, depth+1)
		nodeCount += n
		maxDepth = max(maxDepth, d)

	case *Table:
		// Row 0 is the header row; its cell count sets the table width.
		width := 0
		if len(v.Rows) > 0 {
			width = len(v.Rows[0].Cells)
		}
		for ri := range v.Rows {
			row := &v.Rows[ri]
			if len(row.Cells) < width {
				report.Add(types.Diagnostic{
					Severity: types.SevWarning,
					Category: types.DiagTruncation,
					Offset:   -1,
					Message:  fmt.Sprintf("row %d padded from %d to %d cells", ri, len(row.Cells), width),
				})
				for len(row.Cells) < width {
					row.Cells = append(row.Cells, Cell{})
				}
			} else if len(row.Cells) > width {
				report.Add(types.Diagnostic{
					Severity: types.SevWarning,
					Category: types.DiagTruncation,
					Offset:   -1,
					Message:  fmt.Sprintf("row %d truncated from %d to %d cells", ri, len(row.Cells), width),
				})
				row.Cells = row.Cells[:width]
			}
			for ci := range row.Cells {
				n, d := validateInlines(row.Cells[ci].Inlines, cfg, report, depth+2)
				nodeCount += n
				maxDepth = max(maxDepth, d)
			}
		}

	case *CodeBlock, *HorizontalRule:
		// leaf blocks, nothing to recurse into

	default:
		err = types.ErrInternal
	}

	if cfg.MaxNestingDepth > 0 && maxDepth > cfg.MaxNestingDepth {
		err = (&ValidationError{Limit: "max_nesting_depth", Current: int64(maxDepth), Maximum: int64(cfg.MaxNestingDepth)}).AsTypesError()
	}
	return
}

func validateInlines(inlines []Inline, cfg policy.Config, report *types.DiagnosticReport, depth int) (nodeCount int, maxDepth int) {
	maxDepth = depth
	for _, in := range inlines {
		nodeCount++
		switch v := in.(type) {
		case *Emphasis:
			n, d := validateInlines(v.Inlines, cfg, report, depth+1)
			nodeCount += n
			maxDepth = max(maxDepth, d)
		case *Link:
			n, d := validateInlines(v.Inlines, cfg, report, depth+1)
			nodeCount += n
			maxDepth = max(maxDepth, d)
		case *Image:
			n, d := validateInlines(v.Alt, cfg, report, depth+1)
			nodeCount += n
			maxDepth = max(maxDepth, d)
		case *Text, *InlineCode, *LineBreak, *CharacterRef:
			// leaves
		}
	}
	return
}

// CountNodes returns the total node count of the document (blocks and
// inlines, including the inlines inside table cells — everything
// Validate would count toward max_document_nodes). Rows and cells
// themselves are not counted.
func CountNodes(d *Document) int {
	total := 0
	for _, b := range d.Blocks {
		total += countBlockNodes(b)
	}
	return total
}

func countBlockNodes(b Block) int {
	n := 1
	switch v := b.(type) {
	case *Heading:
		n += countInlineNodes(v.Inlines)
	case *Paragraph:
		n += countInlineNodes(v.Inlines)
	case *ListItem:
		n += countInlineNodes(v.Inlines)
	case *BlockQuote:
		n += countInlineNodes(v.Inlines)
	case *Table:
		for _, row := range v.Rows {
			for _, cell := range row.Cells {
				n += countInlineNodes(cell.Inlines)
			}
		}
	}
	return n
}

func countInlineNodes(inlines []Inline) int {
	n := 0
	for _, in := range inlines {
		n++
		switch v := in.(type) {
		case *Emphasis:
			n += countInlineNodes(v.Inlines)
		case *Link:
			n += countInlineNodes(v.Inlines)
		case *Image:
			n += countInlineNodes(v.Alt)
		}
	}
	return n
}

// MaxDepth returns the deepest nesting level found in the document.
func MaxDepth(d *Document) int {
	depth := 0
	for _, b := range d.Blocks {
		_, dep, _ := validateBlock(b, policy.Config{}, types.NewDiagnosticReport(), 1)
		if dep > depth {
			depth = dep
		}
	}
	return depth
}
