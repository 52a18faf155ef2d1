package logger

import (
	"testing"

	"github.com/invcheck/invcheck/config"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestGetLogsFiltersByLevel(t *testing.T) {
	Info("backend reachable")
	Warning("save failed")
	Debug("noise")

	logs := GetLogs(10, "WARNING")
	assert.NotEmpty(t, logs)
	assert.Contains(t, logs[0], "save failed")
	for _, l := range logs {
		assert.NotContains(t, l, "noise")
	}

	assert.Len(t, GetLogs(1, "DEBUG"), 1)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(config.Warn)
	assert.NoError(t, err)
	assert.Equal(t, logging.WARNING, level)

	_, err = ParseLevel(config.LogLevel("loud"))
	assert.Error(t, err)
}
