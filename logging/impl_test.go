package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

func newBufferedLogger(name string, level Level) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}
	return logger, buf
}

// readLine returns the tab separated parts of the next log line.
func readLine(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimSuffix(line, "\n"), "\t")
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferedLogger("planner", DEBUG)

	logger.Info("calculating recovery steps")
	parts := readLine(t, buf)
	test.That(t, len(parts[0]), test.ShouldEqual, len("2006-01-02T15:04:05.000Z"))
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "planner")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "calculating recovery steps")

	logger.Debugf("depth %d of %d", 1, 3)
	parts = readLine(t, buf)
	test.That(t, parts[1], test.ShouldEqual, "DEBUG")
	test.That(t, parts[4], test.ShouldEqual, "depth 1 of 3")

	logger.Warnw("not capturable", "steps", 2, "side", "left")
	parts = readLine(t, buf)
	test.That(t, parts[1], test.ShouldEqual, "WARN")
	test.That(t, parts[4], test.ShouldEqual, "not capturable")
	test.That(t, parts[5], test.ShouldEqual, `{"steps": 2, "side": "left"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger("", WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Error("kept")
	parts := readLine(t, buf)
	test.That(t, parts[len(parts)-1], test.ShouldEqual, "kept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	parts = readLine(t, buf)
	test.That(t, parts[len(parts)-1], test.ShouldEqual, "now kept")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferedLogger("control", INFO)
	sub := logger.Sublogger("recovery_loop")
	sub.Info("tick")

	parts := readLine(t, buf)
	test.That(t, parts[2], test.ShouldEqual, "control.recovery_loop")

	// the sublogger level is independent of its parent
	sub.SetLevel(ERROR)
	sub.Info("dropped")
	logger.Info("parent still logs")
	parts = readLine(t, buf)
	test.That(t, parts[2], test.ShouldEqual, "control")

	unnamed, _ := newBufferedLogger("", INFO)
	unnamedSub := unnamed.Sublogger("planner").(*impl)
	test.That(t, unnamedSub.name, test.ShouldEqual, "planner")
}

func TestObservedTestLogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("plan computed", "capturable", true)
	logger.Warnw("unpaired", "key")

	entries := observed.All()
	test.That(t, len(entries), test.ShouldEqual, 2)
	test.That(t, entries[0].Message, test.ShouldEqual, "plan computed")
	test.That(t, entries[0].ContextMap()["capturable"], test.ShouldEqual, true)
	test.That(t, entries[1].ContextMap()["key"], test.ShouldNotBeNil)
	test.That(t, observed.FilterMessage("plan computed").Len(), test.ShouldEqual, 1)
}

func TestLevelParsing(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
		err      bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"Warning", WARN, false},
		{"error", ERROR, false},
		{"verbose", DEBUG, true},
	} {
		level, err := LevelFromString(tc.input)
		if tc.err {
			test.That(t, err, test.ShouldNotBeNil)
			continue
		}
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := level.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"warn"`)
}
