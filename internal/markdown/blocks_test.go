package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

func TestParseATXHeading(t *testing.T) {
	doc, _, err := Parse([]byte("# Title\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	h, ok := doc.Blocks[0].(*model.Heading)
	require.True(t, ok)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "Title", doc.Metadata.Title)
}

func TestParseSetextHeadingLevel1(t *testing.T) {
	doc, _, err := Parse([]byte("Title\n=====\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	h, ok := doc.Blocks[0].(*model.Heading)
	require.True(t, ok)
	assert.Equal(t, 1, h.Level)
}

func TestParseSetextHeadingLevel2(t *testing.T) {
	doc, _, err := Parse([]byte("Subtitle\n---\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	h, ok := doc.Blocks[0].(*model.Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
}

func TestParseThematicBreak(t *testing.T) {
	doc, _, err := Parse([]byte("above\n\n---\n\nbelow\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)
	_, ok := doc.Blocks[1].(*model.HorizontalRule)
	assert.True(t, ok)
}

func TestParseFencedCodeBlock(t *testing.T) {
	doc, _, err := Parse([]byte("```go\nfmt.Println(1)\n```\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(*model.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "go", cb.Language)
	assert.Equal(t, "fmt.Println(1)", cb.Text)
}

func TestParseIndentedCodeBlock(t *testing.T) {
	doc, _, err := Parse([]byte("    a := 1\n    b := 2\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(*model.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "a := 1\nb := 2", cb.Text)
}

func TestParseBlockquote(t *testing.T) {
	doc, _, err := Parse([]byte("> quoted line\n> second line\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	bq, ok := doc.Blocks[0].(*model.BlockQuote)
	require.True(t, ok)
	assert.NotEmpty(t, bq.Inlines)
}

func TestParseBulletList(t *testing.T) {
	doc, _, err := Parse([]byte("- one\n- two\n- three\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)
	for _, b := range doc.Blocks {
		li, ok := b.(*model.ListItem)
		require.True(t, ok)
		assert.False(t, li.Ordered)
		assert.Equal(t, 1, li.Depth)
	}
}

func TestParseOrderedList(t *testing.T) {
	doc, _, err := Parse([]byte("1. one\n2. two\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)
	li, ok := doc.Blocks[0].(*model.ListItem)
	require.True(t, ok)
	assert.True(t, li.Ordered)
}

func TestParseListDepthLimit(t *testing.T) {
	cfg := policy.Standard()
	cfg.MaxListDepth = 1
	_, _, err := Parse([]byte("  - nested too deep\n"), cfg)
	require.Error(t, err)
	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindResourceLimit, typed.Kind)
}

func TestParseTable(t *testing.T) {
	input := "| A | B |\n| - | - |\n| 1 | 2 |\n"
	doc, _, err := Parse([]byte(input), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	table, ok := doc.Blocks[0].(*model.Table)
	require.True(t, ok)
	require.Len(t, table.Rows, 2)
	require.Len(t, table.Rows[0].Cells, 2)
	assert.Equal(t, "A", table.Rows[0].Cells[0].Inlines[0].(*model.Text).Value)
	assert.Equal(t, "1", table.Rows[1].Cells[0].Inlines[0].(*model.Text).Value)
}

func TestParseParagraphLazyContinuation(t *testing.T) {
	doc, _, err := Parse([]byte("line one\nline two\n\nnext paragraph\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)
	p, ok := doc.Blocks[0].(*model.Paragraph)
	require.True(t, ok)
	text := plainText(p.Inlines)
	assert.Equal(t, "line one line two", text)
}

func TestParseHardLineBreakTrailingSpaces(t *testing.T) {
	doc, _, err := Parse([]byte("line one  \nline two\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	p := doc.Blocks[0].(*model.Paragraph)
	var sawBreak bool
	for _, in := range p.Inlines {
		if lb, ok := in.(*model.LineBreak); ok && lb.Hard {
			sawBreak = true
		}
	}
	assert.True(t, sawBreak)
}

func TestParseEmptyInput(t *testing.T) {
	doc, report, err := Parse([]byte(""), policy.Standard())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Empty(t, doc.Blocks)
}

func TestParseMaxInputBytesExceeded(t *testing.T) {
	cfg := policy.Standard()
	cfg.MaxInputBytes = 4
	_, _, err := Parse([]byte("# way too long a heading"), cfg)
	require.Error(t, err)
	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindResourceLimit, typed.Kind)
}

func TestParseBlockedLinkSchemeUnderStandardIsDiscardedNotError(t *testing.T) {
	doc, report, err := Parse([]byte("click [here](javascript:alert(1)) now\n"), policy.Standard())
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	p := doc.Blocks[0].(*model.Paragraph)
	var rendered strings.Builder
	for _, in := range p.Inlines {
		_, isLink := in.(*model.Link)
		assert.False(t, isLink, "javascript: link must not survive as a Link node")
		if text, ok := in.(*model.Text); ok {
			rendered.WriteString(text.Value)
		}
	}
	assert.Equal(t, "click here now", rendered.String())
	assert.NotContains(t, rendered.String(), "javascript:")
	assert.NotContains(t, rendered.String(), "[")
	assert.True(t, report.HasAnyIssues())
}

func TestParseBlockedLinkSchemeUnderEnhancedIsError(t *testing.T) {
	_, _, err := Parse([]byte("click [here](javascript:alert(1)) now\n"), policy.Enhanced())
	require.Error(t, err)
	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindSecurity, typed.Kind)
}
