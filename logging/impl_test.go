package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type jointReading struct {
	Index int
	Value float64
	unit  string
}

// assertLogMatches fuzzy matches a console log line. It checks the shape of the timestamp and
// the caller filename but ignores the exact time and line number.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	actualFilename, actualLine, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLine)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[3], test.ShouldEqual, expectedParts[3])
	if len(actualParts) == 4 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[4]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[4]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{level: NewAtomicLevelAt(DEBUG), appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.Info("solver ready")
	assertLogMatches(t, notStdout,
		`2026-10-16T09:12:09.459-0400	INFO	logging/impl_test.go:60	solver ready`)

	logger.Infof("joint %d out of range", 3)
	assertLogMatches(t, notStdout,
		`2026-10-16T09:12:09.459-0400	INFO	logging/impl_test.go:64	joint 3 out of range`)

	logger.Warnw("clamped", "joint", 2, "value", 181.5)
	assertLogMatches(t, notStdout,
		`2026-10-16T09:12:09.459-0400	WARN	logging/impl_test.go:68	clamped	{"joint":2,"value":181.5}`)

	// Only exported struct fields are serialized.
	logger.Errorw("rejected", "reading", jointReading{4, 12.5, "deg"})
	assertLogMatches(t, notStdout,
		`2026-10-16T09:12:09.459-0400	ERROR	logging/impl_test.go:73	rejected	{"reading":{"Index":4,"Value":12.5}}`)

	logger.Infow("unpaired", "dangling")
	assertLogMatches(t, notStdout,
		`2026-10-16T09:12:09.459-0400	INFO	logging/impl_test.go:77	unpaired	{"dangling":"unpaired log key"}`)
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{level: NewAtomicLevelAt(WARN), appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.Debug("hidden")
	logger.Info("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("shown")
	test.That(t, notStdout.Len(), test.ShouldBeGreaterThan, 0)

	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)

	for _, tc := range []struct {
		in    string
		level Level
	}{
		{"debug", DEBUG}, {"INFO", INFO}, {" warning ", WARN}, {"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.level)
		test.That(t, level.AsZap(), test.ShouldEqual, []zapcore.Level{
			zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel,
		}[int(tc.level)+1])
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSubloggerAndObserver(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("group").Sublogger("robot")

	sub.Errorw("joint out of range", "joint", 1)
	logger.Debug("parent")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.All()
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "group.robot")
	test.That(t, entries[0].Message, test.ShouldEqual, "joint out of range")
	test.That(t, entries[0].ContextMap()["joint"], test.ShouldEqual, int64(1))
	test.That(t, logs.FilterMessage("parent").Len(), test.ShouldEqual, 1)
}

func TestWith(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	unit := logger.With("unit", "turntable")
	unit.Sublogger("axis").Infow("moved", "value", 12.5)
	logger.Info("plain")

	entries := logs.All()
	test.That(t, len(entries), test.ShouldEqual, 2)
	test.That(t, entries[0].ContextMap(), test.ShouldResemble, map[string]interface{}{"unit": "turntable", "value": 12.5})
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "axis")
	test.That(t, len(entries[1].ContextMap()), test.ShouldEqual, 0)

	unit.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
}
