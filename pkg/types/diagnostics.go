package types

import (
	"sort"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Diagnostics — recoverable-issue notes attached to a conversion result
// -----------------------------------------------------------------------------
//
// Under Standard posture, a number of conditions are recovered rather than
// failed outright (unknown control words, malformed groups inside ignorable
// destinations, over-length table rows — see spec §7 "Recovery"). Each
// recovery is recorded here instead of being silently dropped, so a caller
// that wants to know what got downgraded can inspect the report. Collecting
// diagnostics is always-on but cheap: a conversion that hits none allocates
// nothing beyond the empty slice.

// Severity classifies how serious a recovered issue is.
type Severity int

const (
	SevInfo    Severity = iota // unusual but harmless (e.g. demoted heading level)
	SevWarning                 // recovered with data loss (e.g. truncated row)
	SevError                   // would have failed the call under a stricter posture
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "unknown"
	}
}

// DiagCategory classifies the kind of issue found.
type DiagCategory int

const (
	DiagUnknownConstruct DiagCategory = iota // unrecognized control word / markdown construct
	DiagSecurity                             // blocked construct, discarded under Standard posture
	DiagStructure                            // malformed group/list/table recovered structurally
	DiagTruncation                           // row/column/text truncated to fit a limit
)

func (c DiagCategory) String() string {
	switch c {
	case DiagUnknownConstruct:
		return "unknown_construct"
	case DiagSecurity:
		return "security"
	case DiagStructure:
		return "structure"
	case DiagTruncation:
		return "truncation"
	default:
		return "unknown"
	}
}

// Diagnostic is a single recovered issue.
type Diagnostic struct {
	Severity Severity
	Category DiagCategory
	Offset   int // byte offset in the source input, -1 if not applicable
	Message  string
}

// DiagnosticReport collects every diagnostic raised during one conversion.
type DiagnosticReport struct {
	Diagnostics []Diagnostic
	Summary     DiagSummary
}

// DiagSummary is quick counts, incrementally maintained by Add.
type DiagSummary struct {
	Info    int
	Warning int
	Error   int
}

// NewDiagnosticReport returns an empty report.
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{}
}

// Add records a diagnostic and updates the summary counts.
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevInfo:
		r.Summary.Info++
	case SevWarning:
		r.Summary.Warning++
	case SevError:
		r.Summary.Error++
	}
}

// HasAnyIssues reports whether any diagnostic was recorded.
func (r *DiagnosticReport) HasAnyIssues() bool {
	return r != nil && len(r.Diagnostics) > 0
}

// FormatTextCompact renders one line per diagnostic, sorted by offset.
func (r *DiagnosticReport) FormatTextCompact() string {
	if r == nil || len(r.Diagnostics) == 0 {
		return "no diagnostics\n"
	}
	sorted := make([]Diagnostic, len(r.Diagnostics))
	copy(sorted, r.Diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var b strings.Builder
	for _, d := range sorted {
		b.WriteByte('[')
		b.WriteString(d.Severity.String())
		b.WriteByte('/')
		b.WriteString(d.Category.String())
		b.WriteString("] offset ")
		b.WriteString(strconv.Itoa(d.Offset))
		b.WriteString(": ")
		b.WriteString(d.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
