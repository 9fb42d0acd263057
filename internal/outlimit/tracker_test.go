package outlimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rtfmd/rtfmd/pkg/types"
)

func TestTrackerWithinBudget(t *testing.T) {
	tr := NewTracker(10)
	require.NoError(t, tr.WriteString("hello"))
	require.NoError(t, tr.WriteString("world"))
	assert.Equal(t, int64(10), tr.Len())
	assert.Equal(t, "helloworld", string(tr.Bytes()))
}

func TestTrackerOverBudget(t *testing.T) {
	tr := NewTracker(4)
	err := tr.WriteString("hello")
	require.Error(t, err)
	typedErr, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindResourceLimit, typedErr.Kind)
	assert.Equal(t, "max_output_bytes", typedErr.Limit)
	assert.Equal(t, int64(0), tr.Len(), "failed write must not partially land")
}

func TestTrackerUnbounded(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, tr.WriteByte('x'))
	}
	assert.Equal(t, int64(1000), tr.Len())
}
