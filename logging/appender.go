package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the time layout used by console appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000-0700"

// Appender is an output for log entries. A zapcore.Core that also satisfies this interface
// receives entries through Write.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes tab separated log lines to an io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns an appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns an appender that writes to the given writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// Write renders the entry as "time\tLEVEL\tlogger\tfile:line\tmessage[\t{fields}]".
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line := entry.Time.Format(DefaultTimeFormatStr) + "\t" + entry.Level.CapitalString()
	if entry.LoggerName != "" {
		line += "\t" + entry.LoggerName
	}
	if entry.Caller.Defined {
		line += "\t" + callerToString(&entry.Caller)
	}
	line += "\t" + entry.Message

	if len(fields) > 0 {
		jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
		if err != nil {
			return err
		}
		line += "\t" + buf.String()
		buf.Free()
	}

	_, err := fmt.Fprintln(appender.Writer, line)
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// callerToString renders a caller as "dir/file.go:line".
func callerToString(caller *zapcore.EntryCaller) string {
	return caller.TrimmedPath()
}
