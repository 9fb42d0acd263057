// Package model defines the format-neutral document tree shared by both
// parsers and both generators: RTF and Markdown each parse into the same
// Document, and each generator serializes from it. Blocks and inlines are
// a closed set of tagged variants; adding a variant means adding a case
// everywhere a type switch ranges over the set, by design (see the
// Design Notes in this repo's root documentation).
package model

// Document is the root of a parsed document: an ordered sequence of
// Block nodes plus a small, optional metadata record.
type Document struct {
	Blocks   []Block
	Metadata Metadata
}

// Metadata is open-time information about the document, analogous to an
// RTF \info group or a Markdown document's leading H1. Every field is
// optional; the zero value means "not present".
type Metadata struct {
	Title           string
	Author          string
	DefaultFont     string
	DefaultFontSize int // half-points, 0 if unset
}

// Block is the closed set of block-level node kinds. No type outside
// this package may implement it.
type Block interface {
	blockNode()
}

// Alignment is a paragraph's horizontal alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
	AlignJustify
)

// ListContext carries the list membership of a Paragraph, when the
// paragraph is itself a plain text line rather than a ListItem (reserved
// for future list-lazy-continuation support; currently always nil).
type ListContext struct {
	Ordered bool
	Depth   int
}

// Paragraph is a run of inline content with alignment and optional list
// membership.
type Paragraph struct {
	Inlines     []Inline
	Alignment   Alignment
	ListContext *ListContext
}

func (*Paragraph) blockNode() {}

// Heading is a titled section marker, level 1 (largest) through 6.
type Heading struct {
	Level   int
	Inlines []Inline
}

func (*Heading) blockNode() {}

// ListItem is one entry of an ordered or unordered list. Consecutive
// ListItems at equal Depth form a list when a generator regroups them;
// the model itself carries no list-container node.
type ListItem struct {
	Inlines []Inline
	Ordered bool
	Depth   int
}

func (*ListItem) blockNode() {}

// Table is a sequence of rows; row 0 is the header row by convention.
type Table struct {
	Rows []Row
}

func (*Table) blockNode() {}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

func (*HorizontalRule) blockNode() {}

// CodeBlock is a literal, unformatted block of text with an optional
// language tag (fenced-code info string, or empty for indented code).
type CodeBlock struct {
	Text     string
	Language string
}

func (*CodeBlock) blockNode() {}

// BlockQuote is a quoted run of inline content.
type BlockQuote struct {
	Inlines []Inline
}

func (*BlockQuote) blockNode() {}

// Row is an ordered sequence of Cell.
type Row struct {
	Cells []Cell
}

// Cell owns an inline sequence; it has no block-level content of its own.
type Cell struct {
	Inlines []Inline
}

// Inline is the closed set of inline-level node kinds. No type outside
// this package may implement it.
type Inline interface {
	inlineNode()
}

// Text is a literal run of codepoints with no attached formatting beyond
// what an enclosing Emphasis applies.
type Text struct {
	Value string
}

func (*Text) inlineNode() {}

// Emphasis wraps a run of inline content with one or more character
// formatting toggles. Emphasis nodes nest; they never overlap — a
// generator splits a run at a group boundary rather than emit crossing
// spans.
type Emphasis struct {
	Italic        bool
	Bold          bool
	Underline     bool
	Strikethrough bool
	Inlines       []Inline
}

func (*Emphasis) inlineNode() {}

// Link is a hyperlink: display inlines plus a destination URI, already
// validated against the active policy's scheme allowlist.
type Link struct {
	Inlines     []Inline
	Destination string
	Title       string // optional
}

func (*Link) inlineNode() {}

// Image is an image reference: alt-text inlines plus a source URI.
type Image struct {
	Alt    []Inline
	Source string
}

func (*Image) inlineNode() {}

// InlineCode is a literal run of code text, exempt from emphasis/escape
// processing.
type InlineCode struct {
	Text string
}

func (*InlineCode) inlineNode() {}

// LineBreak is a line break within a paragraph. Hard is true for an
// explicit break (RTF \line, Markdown trailing double-space or
// backslash); false for a soft break that a generator may collapse to a
// single space.
type LineBreak struct {
	Hard bool
}

func (*LineBreak) inlineNode() {}

// CharacterRef is a single codepoint carried verbatim, used for
// characters a generator must emit through an explicit escape (e.g. an
// RTF \u escape or a Markdown numeric character reference) rather than
// as part of a Text run.
type CharacterRef struct {
	Codepoint rune
}

func (*CharacterRef) inlineNode() {}
