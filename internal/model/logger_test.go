package model

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiscardLoggerWorksAsIntended(t *testing.T) {
	logger := DiscardLogger
	logger.Debug("foo")
	logger.Debugf("%s", "foo")
	logger.Info("foo")
	logger.Infof("%s", "foo")
	logger.Warn("foo")
	logger.Warnf("%s", "foo")
}

func TestValidLoggerOrDefault(t *testing.T) {
	if ValidLoggerOrDefault(nil) != DiscardLogger {
		t.Fatal("expected DiscardLogger")
	}
	rec := &recordingLogger{}
	if ValidLoggerOrDefault(rec) != Logger(rec) {
		t.Fatal("expected the same logger")
	}
}

// recordingLogger records every message it receives.
type recordingLogger struct {
	lines []string
}

func (rl *recordingLogger) Debug(msg string) { rl.lines = append(rl.lines, "D "+msg) }
func (rl *recordingLogger) Debugf(format string, v ...interface{}) {
	rl.Debug(fmt.Sprintf(format, v...))
}
func (rl *recordingLogger) Info(msg string) { rl.lines = append(rl.lines, "I "+msg) }
func (rl *recordingLogger) Infof(format string, v ...interface{}) {
	rl.Info(fmt.Sprintf(format, v...))
}
func (rl *recordingLogger) Warn(msg string) { rl.lines = append(rl.lines, "W "+msg) }
func (rl *recordingLogger) Warnf(format string, v ...interface{}) {
	rl.Warn(fmt.Sprintf(format, v...))
}

func TestPrefixLogger(t *testing.T) {
	rec := &recordingLogger{}
	logger := NewPrefixLogger("<abc> ", rec)
	logger.Debug("a")
	logger.Debugf("%s", "b")
	logger.Info("c")
	logger.Infof("%d", 4)
	logger.Warn("e")
	logger.Warnf("%s", "f")
	expect := []string{
		"D <abc> a",
		"D <abc> b",
		"I <abc> c",
		"I <abc> 4",
		"W <abc> e",
		"W <abc> f",
	}
	if diff := cmp.Diff(expect, rec.lines); diff != "" {
		t.Fatal(diff)
	}
}
