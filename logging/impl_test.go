package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestLoggerLevels(t *testing.T) {
	logger := NewLogger("viz")
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)

	sub := logger.Sublogger("frames")
	test.That(t, sub.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestObservedLogs(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Infow("decoded", "points", 42)
	logger.Debug("sweep ran")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	all := logs.All()
	test.That(t, all[0].Message, test.ShouldEqual, "decoded")
	test.That(t, all[0].ContextMap()["points"], test.ShouldEqual, 42)
}

func TestLevelFromString(t *testing.T) {
	level, err := LevelFromString("warn")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)

	_, err = LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}
