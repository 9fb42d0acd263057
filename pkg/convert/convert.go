// Package convert is the public library facade: one synchronous,
// deterministic entry point that runs an RTF<->Markdown conversion
// under a policy.Config and returns the generated bytes plus whatever
// diagnostics were collected along the way — the direct analogue of
// the teacher's pkg/hive facade package.
package convert

import (
	"time"

	"github.com/go-rtfmd/rtfmd/internal/log"
	"github.com/go-rtfmd/rtfmd/internal/markdown"
	"github.com/go-rtfmd/rtfmd/internal/rtf"
	"github.com/go-rtfmd/rtfmd/pkg/model"
	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

// Direction selects which format is the source and which is the
// target of a single conversion call.
type Direction int

const (
	RTFToMarkdown Direction = iota
	MarkdownToRTF
)

func (d Direction) String() string {
	switch d {
	case RTFToMarkdown:
		return "rtf_to_markdown"
	case MarkdownToRTF:
		return "markdown_to_rtf"
	default:
		return "unknown_direction"
	}
}

// Result is the outcome of a successful conversion.
type Result struct {
	Output      []byte
	Diagnostics *types.DiagnosticReport
}

// Logger, set via SetLogger, receives a line per conversion outcome.
// The default discards everything, matching the teacher's opt-in,
// zero-cost-when-disabled diagnostic collector.
var logger = log.Discard()

// SetLogger installs l as the package-level logger used by Convert.
// Passing nil restores the discarding default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Discard()
	}
	logger = l
}

// Convert runs one synchronous, deterministic conversion: equal input
// bytes and an equal policy.Config always produce byte-identical
// output, with no shared mutable state across calls (policy.Config is
// copied by value; the input slice is only read, never retained).
//
// cfg.Deadline, when non-zero, bounds the call's wall-clock time. The
// parse/validate/generate pipeline itself has no suspension points, so
// the deadline is enforced by racing the pipeline against a timer on
// a dedicated goroutine; a conversion that is still running when the
// deadline fires returns ErrKindResourceLimit("deadline") immediately,
// though the abandoned goroutine runs to completion in the background
// and its result is discarded. The RTF parser also checks the deadline
// after every token and fails with the same "deadline" limit; the
// Markdown parser and both generators do not check it.
func Convert(direction Direction, input []byte, cfg policy.Config) (*Result, error) {
	if cfg.Deadline <= 0 {
		return convertNow(direction, input, cfg)
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := convertNow(direction, input, cfg)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-time.After(cfg.Deadline):
		logger.Warnf("conversion %s exceeded deadline %s", direction, cfg.Deadline)
		return nil, types.NewResourceLimitError("deadline", int64(cfg.Deadline), int64(cfg.Deadline))
	}
}

func convertNow(direction Direction, input []byte, cfg policy.Config) (*Result, error) {
	var doc *model.Document
	var report *types.DiagnosticReport
	var err error

	switch direction {
	case RTFToMarkdown:
		doc, report, err = rtf.Parse(input, cfg)
	case MarkdownToRTF:
		doc, report, err = markdown.Parse(input, cfg)
	default:
		return nil, types.NewParseError("unknown conversion direction", -1, "", "", "")
	}
	if err != nil {
		logger.Errorf("parse failed for %s: %v", direction, err)
		return nil, err
	}

	validationReport, err := model.Validate(doc, cfg)
	if err != nil {
		logger.Errorf("document validation failed for %s: %v", direction, err)
		return nil, err
	}
	for _, d := range validationReport.Diagnostics {
		report.Add(d)
	}

	var output []byte
	var genReport *types.DiagnosticReport
	switch direction {
	case RTFToMarkdown:
		output, genReport, err = markdown.Generate(doc, cfg)
	case MarkdownToRTF:
		output, genReport, err = rtf.Generate(doc, cfg)
	}
	if err != nil {
		logger.Errorf("generate failed for %s: %v", direction, err)
		return nil, err
	}
	for _, d := range genReport.Diagnostics {
		report.Add(d)
	}

	logger.Infof("converted %s: %d input bytes, %d output bytes, %d diagnostics",
		direction, len(input), len(output), len(report.Diagnostics))

	return &Result{Output: output, Diagnostics: report}, nil
}
