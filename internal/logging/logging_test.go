package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-cropadvice/internal/logging"
)

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, level)

	level, err = logging.ParseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, level)

	_, err = logging.ParseLevel("chatty")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := logging.New(logging.Options{Level: "warn"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	dev, err := logging.New(logging.Options{Level: "debug", Development: true})
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	_, err = logging.New(logging.Options{Level: "nope"})
	require.Error(t, err)
}
