package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
)

func TestGenerateHeading(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Heading{Level: 2, Inlines: []model.Inline{&model.Text{Value: "Title"}}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Equal(t, "## Title\n\n", string(out))
}

func TestGenerateBoldItalicCombined(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{
			&model.Emphasis{Bold: true, Italic: true, Inlines: []model.Inline{&model.Text{Value: "both"}}},
		}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Contains(t, string(out), "***both***")
}

func TestGenerateStrikethrough(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{
			&model.Emphasis{Strikethrough: true, Inlines: []model.Inline{&model.Text{Value: "gone"}}},
		}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Contains(t, string(out), "~~gone~~")
}

func TestGenerateUnderlineUsesHTMLTag(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{
			&model.Emphasis{Underline: true, Inlines: []model.Inline{&model.Text{Value: "under"}}},
		}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<u>under</u>")
}

func TestGenerateLinkWithTitle(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{
			&model.Link{Inlines: []model.Inline{&model.Text{Value: "docs"}}, Destination: "https://example.com", Title: "Docs"},
		}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Contains(t, string(out), `[docs](https://example.com "Docs")`)
}

func TestGenerateUnorderedList(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.ListItem{Depth: 1, Inlines: []model.Inline{&model.Text{Value: "one"}}},
		&model.ListItem{Depth: 1, Inlines: []model.Inline{&model.Text{Value: "two"}}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "- one\n")
	assert.Contains(t, s, "- two\n")
}

func TestGenerateOrderedListNumbering(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.ListItem{Depth: 1, Ordered: true, Inlines: []model.Inline{&model.Text{Value: "first"}}},
		&model.ListItem{Depth: 1, Ordered: true, Inlines: []model.Inline{&model.Text{Value: "second"}}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "1. first\n")
	assert.Contains(t, s, "2. second\n")
}

func TestGenerateCodeBlockFence(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.CodeBlock{Text: "x := 1", Language: "go"},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "```go\n"))
	assert.Contains(t, s, "x := 1")
}

func TestGenerateTable(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Table{Rows: []model.Row{
			{Cells: []model.Cell{{Inlines: []model.Inline{&model.Text{Value: "A"}}}, {Inlines: []model.Inline{&model.Text{Value: "B"}}}}},
			{Cells: []model.Cell{{Inlines: []model.Inline{&model.Text{Value: "1"}}}, {Inlines: []model.Inline{&model.Text{Value: "2"}}}}},
		}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "| A | B |")
	assert.Contains(t, s, "| --- | --- |")
	assert.Contains(t, s, "| 1 | 2 |")
}

func TestGenerateEscapesMarkdownPunctuation(t *testing.T) {
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{&model.Text{Value: "a*b_c"}}},
	}}
	out, _, err := Generate(doc, policy.Standard())
	require.NoError(t, err)
	assert.Contains(t, string(out), `a\*b\_c`)
}

func TestGenerateRespectsMaxOutputBytes(t *testing.T) {
	cfg := policy.Standard()
	cfg.MaxOutputBytes = 4
	doc := &model.Document{Blocks: []model.Block{
		&model.Paragraph{Inlines: []model.Inline{&model.Text{Value: "a very long run of text"}}},
	}}
	_, _, err := Generate(doc, cfg)
	require.Error(t, err)
}
