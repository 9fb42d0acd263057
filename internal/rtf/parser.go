package rtf

import (
	"strings"
	"time"

	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// destinationKind identifies which side channel a group's body is
// routed to. destNone means the body is ordinary document text.
type destinationKind int

const (
	destNone destinationKind = iota
	destStylesheet
	destInfo
	destPict
	destObject
	destFieldInst
	destGenerator
	destTemplate
	destIgnorable
)

// formattingContext is one stack frame: the formatting and routing
// state in effect for the group currently open. Frames are small value
// types copied on push so a child group inherits its parent's state
// without the parent needing to track children.
type formattingContext struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Alignment model.Alignment
	ListDepth int
	InTable   bool

	Destination  destinationKind
	OutlineLevel int // -1 = none
	UnicodeSkip  int
}

// Parser consumes a token stream from a Lexer and builds a model.Document.
type Parser struct {
	lex *Lexer
	cfg policy.Config

	stack []formattingContext

	blocks    []model.Block
	paragraph []model.Inline

	pendingCells []model.Cell
	currentTable *model.Table

	codepage int64

	titleBuf        []rune
	collectingTitle bool
	fieldInstBuf    []rune
	ignorableBuf    []rune

	report    *types.DiagnosticReport
	startedAt time.Time
}

// Parse converts RTF source bytes into a Document under cfg, reporting
// recoverable issues in the returned DiagnosticReport.
func Parse(input []byte, cfg policy.Config) (*model.Document, *types.DiagnosticReport, error) {
	if cfg.MaxInputBytes > 0 && int64(len(input)) > cfg.MaxInputBytes {
		return nil, nil, types.NewResourceLimitError("max_input_bytes", int64(len(input)), cfg.MaxInputBytes)
	}
	if len(input) == 0 {
		return &model.Document{}, types.NewDiagnosticReport(), nil
	}

	p := &Parser{
		lex:       NewLexer(input, cfg),
		cfg:       cfg,
		report:    types.NewDiagnosticReport(),
		startedAt: time.Now(),
	}

	if err := p.run(); err != nil {
		return nil, p.report, err
	}

	doc := &model.Document{Blocks: p.blocks, Metadata: model.Metadata{Title: strings.TrimSpace(string(p.titleBuf))}}
	return doc, p.report, nil
}

func (p *Parser) top() *formattingContext {
	return &p.stack[len(p.stack)-1]
}

func (p *Parser) checkDeadline(offset int) error {
	if p.cfg.Deadline <= 0 {
		return nil
	}
	if time.Since(p.startedAt) > p.cfg.Deadline {
		err := types.NewResourceLimitError("deadline", time.Since(p.startedAt).Milliseconds(), p.cfg.Deadline.Milliseconds())
		err.Offset = offset
		return err
	}
	return nil
}

func (p *Parser) run() error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}

		switch tok.Kind {
		case TokenEOF:
			if len(p.stack) != 0 {
				e := types.ErrUnterminatedGroup
				e2 := *e
				e2.Offset = tok.Offset
				return &e2
			}
			p.flushDanglingParagraph()
			p.flushDanglingTable()
			return nil

		case TokenGroupOpen:
			if err := p.pushGroup(); err != nil {
				return err
			}

		case TokenGroupClose:
			if err := p.popGroup(tok.Offset); err != nil {
				return err
			}

		case TokenControlWord:
			if err := p.handleControlWord(tok); err != nil {
				return err
			}

		case TokenControlSymbol:
			p.handleControlSymbol(tok)

		case TokenHexByte:
			p.feedRune(decodeByte(p.codepage, tok.ByteValue))

		case TokenUnicodeEscape:
			p.handleUnicodeEscape(tok)

		case TokenText:
			p.handleText(tok)
		}

		if len(p.stack) > 0 {
			if err := p.checkDeadline(tok.Offset); err != nil {
				return err
			}
		}
	}
}

func (p *Parser) pushGroup() error {
	if p.cfg.MaxNestingDepth > 0 && len(p.stack)+1 > p.cfg.MaxNestingDepth {
		return types.NewResourceLimitError("max_nesting_depth", int64(len(p.stack)+1), int64(p.cfg.MaxNestingDepth))
	}
	var frame formattingContext
	if len(p.stack) == 0 {
		frame = formattingContext{OutlineLevel: -1, UnicodeSkip: 1, Alignment: model.AlignLeft}
	} else {
		frame = *p.top()
	}
	p.stack = append(p.stack, frame)
	return nil
}

func (p *Parser) popGroup(offset int) error {
	if len(p.stack) == 0 {
		e := types.ErrUnexpectedClose
		e2 := *e
		e2.Offset = offset
		return &e2
	}
	popped := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	switch popped.Destination {
	case destInfo:
		if p.collectingTitle {
			p.collectingTitle = false
		}
	case destFieldInst:
		instr := string(p.fieldInstBuf)
		p.fieldInstBuf = nil
		if IsBlockedFieldInstruction(instr) {
			return p.blockedConstruct("field:" + firstWord(instr))
		}
	case destGenerator:
		text := string(p.ignorableBuf)
		p.ignorableBuf = nil
		if IsBlockedGenerator(text) {
			return p.blockedConstruct("generator")
		}
	case destTemplate:
		text := string(p.ignorableBuf)
		p.ignorableBuf = nil
		if IsBlockedTemplate(text) {
			return p.blockedConstruct("template")
		}
	}
	return nil
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func (p *Parser) blockedConstruct(name string) error {
	if p.cfg.Posture == policy.PostureStandard {
		p.report.Add(types.Diagnostic{
			Severity: types.SevWarning,
			Category: types.DiagSecurity,
			Offset:   -1,
			Message:  "blocked construct '" + name + "' discarded under standard posture",
		})
		return nil
	}
	return types.NewSecurityError(name, p.cfg.Posture.String())
}

func (p *Parser) handleControlWord(tok Token) error {
	name := tok.Name

	if IsBlockedDestination(name) {
		cur := p.top()
		cur.Destination = destObject
		if err := p.blockedConstruct(name); err != nil {
			return err
		}
		return nil
	}

	cur := p.top()

	switch name {
	case "rtf", "deff":
		// version/default-font markers; no state change needed here.
	case "ansi":
		p.codepage = 1252
	case "ansicpg":
		if tok.HasParam {
			p.codepage = tok.Param
		}
	case "pc":
		p.codepage = 437
	case "pca":
		p.codepage = 850

	case "fonttbl", "colortbl":
		// font/color tables are a side channel with no Markdown
		// equivalent; their body is discarded like any other
		// ignorable destination rather than retained.
		cur.Destination = destIgnorable
	case "stylesheet":
		cur.Destination = destStylesheet
	case "info":
		cur.Destination = destInfo
	case "title":
		if cur.Destination == destInfo {
			p.collectingTitle = true
		}
	case "pict":
		cur.Destination = destPict
	case "fldinst":
		cur.Destination = destFieldInst
	case "generator":
		cur.Destination = destGenerator
	case "template":
		cur.Destination = destTemplate
	case "fldrslt", "field":
		// display-result marker; content flows through as ordinary text.

	case "b":
		cur.Bold = !(tok.HasParam && tok.Param == 0)
	case "i":
		cur.Italic = !(tok.HasParam && tok.Param == 0)
	case "ul":
		cur.Underline = true
	case "ulnone":
		cur.Underline = false
	case "strike":
		cur.Strike = !(tok.HasParam && tok.Param == 0)
	case "f", "fs", "cf":
		// font/size/color selector: no Markdown equivalent to carry it to.

	case "par":
		p.flushParagraph()
	case "line":
		p.appendInline(&model.LineBreak{Hard: true})
	case "tab":
		p.appendText("\t")
	case "page", "sect":
		p.flushParagraph()
	case "pard":
		cur.Alignment = model.AlignLeft
		cur.ListDepth = 0
		cur.OutlineLevel = -1
		cur.InTable = false
	case "ql":
		cur.Alignment = model.AlignLeft
	case "qr":
		cur.Alignment = model.AlignRight
	case "qc":
		cur.Alignment = model.AlignCenter
	case "qj":
		cur.Alignment = model.AlignJustify
	case "li":
		if tok.HasParam && tok.Param > 0 {
			cur.ListDepth = int(tok.Param / 720)
		}
	case "ri", "fi", "sa", "sb":
		// spacing/indent detail not represented in the model.

	case "red", "green", "blue":
		// color table component; the table itself is discarded.

	case "intbl":
		cur.InTable = true
	case "trowd":
		p.pendingCells = nil
	case "cell":
		p.closeCell()
	case "row":
		p.closeRow()

	case "outlinelevel":
		if tok.HasParam {
			cur.OutlineLevel = int(tok.Param) + 1
		}

	case "uc":
		if tok.HasParam {
			cur.UnicodeSkip = int(tok.Param)
		}

	default:
		if !p.cfg.AllowUnknownControlWords {
			return &types.Error{Kind: types.ErrKindUnsupported, Msg: "unsupported control word: \\" + name, Offset: tok.Offset}
		} else {
			p.report.Add(types.Diagnostic{
				Severity: types.SevInfo,
				Category: types.DiagUnknownConstruct,
				Offset:   tok.Offset,
				Message:  "unknown control word \\" + name + " skipped",
			})
		}
	}
	return nil
}

func (p *Parser) handleControlSymbol(tok Token) {
	cur := p.top()
	switch tok.Name {
	case "*":
		cur.Destination = destIgnorable
	case "~":
		p.feedRune(' ')
	case "_":
		p.feedRune('‑')
	case "-":
		// optional hyphen: no visible output
	case "\\", "{", "}":
		p.feedRune(rune(tok.Name[0]))
	default:
		// unrecognized control symbol, ignore
	}
}

func (p *Parser) handleUnicodeEscape(tok Token) {
	cur := p.top()
	p.feedRune(rune(int16(tok.Param)))
	skip := cur.UnicodeSkip
	if skip <= 0 {
		skip = 1
	}
	p.lex.SkipReplacementBytes(skip)
}

func (p *Parser) handleText(tok Token) {
	for _, b := range tok.Text {
		if b < 0x80 {
			p.feedRune(rune(b))
		} else {
			p.feedRune(decodeByte(p.codepage, b))
		}
	}
}

// feedRune routes one decoded character to the destination the current
// group is bound to.
func (p *Parser) feedRune(r rune) {
	cur := p.top()
	switch cur.Destination {
	case destInfo:
		if p.collectingTitle {
			p.titleBuf = append(p.titleBuf, r)
		}
	case destFieldInst:
		p.fieldInstBuf = append(p.fieldInstBuf, r)
	case destGenerator, destTemplate:
		p.ignorableBuf = append(p.ignorableBuf, r)
	case destPict, destObject, destStylesheet, destIgnorable:
		// discarded side channel content
	default:
		if r == '\t' {
			p.appendText("\t")
			return
		}
		p.appendText(string(r))
	}
}

func (p *Parser) appendInline(in model.Inline) {
	p.paragraph = append(p.paragraph, in)
}

func (p *Parser) appendText(s string) {
	if s == "" {
		return
	}
	cur := p.top()
	if cur.Bold || cur.Italic || cur.Underline || cur.Strike {
		if n := len(p.paragraph); n > 0 {
			if em, ok := p.paragraph[n-1].(*model.Emphasis); ok &&
				em.Bold == cur.Bold && em.Italic == cur.Italic &&
				em.Underline == cur.Underline && em.Strikethrough == cur.Strike {
				appendOrMergeText(&em.Inlines, s)
				return
			}
		}
		p.paragraph = append(p.paragraph, &model.Emphasis{
			Bold: cur.Bold, Italic: cur.Italic, Underline: cur.Underline, Strikethrough: cur.Strike,
			Inlines: []model.Inline{&model.Text{Value: s}},
		})
		return
	}
	appendOrMergeText(&p.paragraph, s)
}

func appendOrMergeText(inlines *[]model.Inline, s string) {
	if n := len(*inlines); n > 0 {
		if t, ok := (*inlines)[n-1].(*model.Text); ok {
			t.Value += s
			return
		}
	}
	*inlines = append(*inlines, &model.Text{Value: s})
}

func (p *Parser) flushParagraph() {
	cur := p.top()
	if cur.InTable {
		return
	}
	p.flushTableIfPending()

	if cur.OutlineLevel >= 0 {
		level := cur.OutlineLevel
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		p.blocks = append(p.blocks, &model.Heading{Level: level, Inlines: p.paragraph})
		cur.OutlineLevel = -1
	} else {
		p.blocks = append(p.blocks, &model.Paragraph{Inlines: p.paragraph, Alignment: cur.Alignment})
	}
	p.paragraph = nil
}

func (p *Parser) flushDanglingParagraph() {
	if len(p.paragraph) > 0 {
		p.blocks = append(p.blocks, &model.Paragraph{Inlines: p.paragraph})
		p.paragraph = nil
	}
}

func (p *Parser) closeCell() {
	cell := model.Cell{Inlines: p.paragraph}
	p.paragraph = nil
	p.pendingCells = append(p.pendingCells, cell)
}

func (p *Parser) closeRow() {
	row := model.Row{Cells: p.pendingCells}
	p.pendingCells = nil
	if p.currentTable == nil {
		p.currentTable = &model.Table{}
	}
	p.currentTable.Rows = append(p.currentTable.Rows, row)
}

func (p *Parser) flushTableIfPending() {
	if p.currentTable != nil && !p.top().InTable {
		p.blocks = append(p.blocks, p.currentTable)
		p.currentTable = nil
	}
}

func (p *Parser) flushDanglingTable() {
	if p.currentTable != nil {
		p.blocks = append(p.blocks, p.currentTable)
		p.currentTable = nil
	}
}
