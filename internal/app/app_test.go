package app

import (
	"testing"

	"fxexchange/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	prevLevel, prevFormatter := logrus.GetLevel(), logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	setupLogger(config.Logging{Level: "debug", Format: "JSON"})
	require.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	setupLogger(config.Logging{Level: "nonsense", Format: ""})
	require.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
}
