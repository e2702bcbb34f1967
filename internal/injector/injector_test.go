package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/observability/log"
)

func TestInitializeRuntime(t *testing.T) {
	rt, cleanup, err := InitializeRuntime(log.LevelError)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, rt.Logger)
	require.NotNil(t, rt.Events)
	require.NotNil(t, rt.Manager)
	assert.Same(t, rt.Events, rt.Manager.Events())
	assert.False(t, rt.Logger.Enabled(log.LevelInfo))
	assert.Zero(t, rt.Manager.Len())
}
