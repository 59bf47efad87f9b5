package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/adapters"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	require.Empty(t, ctrl.GetConfig(), "expected empty config on init")

	require.NoError(t, ctrl.SetConfig(map[string]any{"k": 1}))
	stats := ctrl.Stats()
	assert.Equal(t, 1, stats["k"])
	assert.Contains(t, stats, "debug.platform.cpus")

	var got map[string]any
	ctrl.OnReload(func(cfg map[string]any) { got = cfg })
	require.NoError(t, ctrl.SetConfig(map[string]any{"x": 2}))
	assert.Equal(t, map[string]any{"k": 1, "x": 2}, got, "reload hook runs synchronously")

	ctrl.SetMetric("m", 3)
	ctrl.RegisterDebugProbe("p", func() any { return "v" })
	stats = ctrl.Stats()
	assert.Equal(t, 3, stats["m"])
	assert.Equal(t, "v", stats["debug.p"])
}
