package vorbisogg

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsClipsByDefault(t *testing.T) {
	o := defaultOptions()
	require.True(t, o.clipSamples)
	require.Nil(t, o.pool)
	require.Nil(t, o.logger)
}

func TestWithClipSamplesDisable(t *testing.T) {
	o := defaultOptions()
	WithClipSamples(false)(o)
	require.False(t, o.clipSamples)
}

func TestWithLoggerReceivesDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	o := defaultOptions()
	WithLogger(logger)(o)
	o.logf("hello %s", "world")

	require.Contains(t, buf.String(), "hello world")
}

func TestLogfIsNoopWithoutLogger(t *testing.T) {
	o := defaultOptions()
	require.NotPanics(t, func() { o.logf("unreachable %d", 1) })
}
