package obs

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_SetsComponentField(t *testing.T) {
	entry := NewLogger("solver", "debug")
	assert.Equal(t, "solver", entry.Data["component"])
	assert.Equal(t, logrus.DebugLevel, entry.Logger.Level)
}

func TestNewLogger_FallsBackToInfoOnUnrecognizedLevel(t *testing.T) {
	entry := NewLogger("solver", "not-a-level")
	assert.Equal(t, logrus.InfoLevel, entry.Logger.Level)
}
