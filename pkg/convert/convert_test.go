package convert

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rtfmd/rtfmd/pkg/policy"
	"github.com/go-rtfmd/rtfmd/pkg/types"
)

func TestConvertRTFToMarkdownHeadingAndBold(t *testing.T) {
	input := []byte(`{\rtf1\ansi\deff0\outlinelevel0 Title\par\b Strong\b0 text\par}`)
	res, err := Convert(RTFToMarkdown, input, policy.Enhanced())
	require.NoError(t, err)
	require.NotNil(t, res)
	out := string(res.Output)
	assert.Contains(t, out, "# Title")
	assert.Contains(t, out, "**Strong**")
}

func TestConvertMarkdownToRTFHeading(t *testing.T) {
	input := []byte("# Title\n\nBody text.\n")
	res, err := Convert(MarkdownToRTF, input, policy.Standard())
	require.NoError(t, err)
	out := string(res.Output)
	assert.True(t, strings.HasPrefix(out, "{\\rtf1"))
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Body text.")
}

func TestConvertEmptyInputSucceeds(t *testing.T) {
	res, err := Convert(RTFToMarkdown, []byte(""), policy.Standard())
	require.NoError(t, err)
	assert.Empty(t, res.Output)
}

func TestConvertPropagatesParseError(t *testing.T) {
	_, err := Convert(RTFToMarkdown, []byte(`{\rtf1 unterminated`), policy.Standard())
	require.Error(t, err)
	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindParse, typed.Kind)
}

func TestConvertDeadlineExceeded(t *testing.T) {
	cfg := policy.Standard()
	cfg.Deadline = time.Nanosecond
	_, err := Convert(RTFToMarkdown, []byte(`{\rtf1 hello\par}`), cfg)
	if err == nil {
		// the pipeline can race the deadline and legitimately win on a
		// fast machine; only assert when it actually fires.
		return
	}
	typed, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindResourceLimit, typed.Kind)
	assert.Equal(t, "deadline", typed.Limit)
}

func TestConvertDeterministicOutput(t *testing.T) {
	input := []byte("# Title\n\n- one\n- two\n")
	cfg := policy.Standard()
	r1, err := Convert(MarkdownToRTF, input, cfg)
	require.NoError(t, err)
	r2, err := Convert(MarkdownToRTF, input, cfg)
	require.NoError(t, err)
	assert.Equal(t, r1.Output, r2.Output)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "rtf_to_markdown", RTFToMarkdown.String())
	assert.Equal(t, "markdown_to_rtf", MarkdownToRTF.String())
}
