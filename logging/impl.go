package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
		fields    []zapcore.Field
	}

	// LogEntry is a zapcore Entry with its structured fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

func (imp *impl) newLogEntry() *LogEntry {
	ret := &LogEntry{}
	ret.Time = time.Now()
	ret.LoggerName = imp.name
	ret.Caller = getCaller()

	return ret
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
		fields:    imp.fields,
	}
}

// With returns a logger sharing imp's name, level and appenders that adds keysAndValues to
// every entry.
func (imp *impl) With(keysAndValues ...interface{}) Logger {
	return &impl{
		name:      imp.name,
		level:     imp.level,
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
		fields:    append(append([]zapcore.Field(nil), imp.fields...), fieldsFrom(keysAndValues)...),
	}
}

func (imp *impl) Sync() error {
	var errs error
	for _, appender := range imp.appenders {
		errs = multierr.Append(errs, appender.Sync())
	}
	return errs
}

// AsZap returns a zap logger that tees into every appender that is also a zapcore.Core, so
// observed test logs keep working for code that needs a plain zap logger.
func (imp *impl) AsZap() *zap.SugaredLogger {
	var cores []zapcore.Core
	for _, appender := range imp.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			cores = append(cores, core)
		}
	}

	config := NewLoggerConfig()
	config.Level = zap.NewAtomicLevelAt(imp.level.Get().AsZap())
	ret := zap.Must(config.Build()).With(imp.fields...).Sugar().Named(imp.name)
	for _, core := range cores {
		ret = ret.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}
	return ret
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get()
}

// logAt builds and writes an entry when logLevel is enabled. message is only evaluated then.
func (imp *impl) logAt(logLevel Level, message func() string, keysAndValues []interface{}) {
	if !imp.shouldLog(logLevel) {
		return
	}
	entry := imp.newLogEntry()
	entry.Level = logLevel.AsZap()
	entry.Message = message()
	entry.fields = append(append([]zapcore.Field(nil), imp.fields...), fieldsFrom(keysAndValues)...)
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

// fieldsFrom pairs up keysAndValues as structured fields. A trailing key without a value is
// kept with an error value.
func fieldsFrom(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func sprint(args []interface{}) func() string {
	return func() string { return fmt.Sprint(args...) }
}

func sprintf(template string, args []interface{}) func() string {
	return func() string { return fmt.Sprintf(template, args...) }
}

func literal(msg string) func() string {
	return func() string { return msg }
}

func (imp *impl) Debug(args ...interface{}) { imp.logAt(DEBUG, sprint(args), nil) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logAt(DEBUG, sprintf(template, args), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.logAt(DEBUG, literal(msg), keysAndValues)
}

func (imp *impl) Info(args ...interface{}) { imp.logAt(INFO, sprint(args), nil) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.logAt(INFO, sprintf(template, args), nil)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logAt(INFO, literal(msg), keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) { imp.logAt(WARN, sprint(args), nil) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logAt(WARN, sprintf(template, args), nil)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logAt(WARN, literal(msg), keysAndValues)
}

func (imp *impl) Error(args ...interface{}) { imp.logAt(ERROR, sprint(args), nil) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logAt(ERROR, sprintf(template, args), nil)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logAt(ERROR, literal(msg), keysAndValues)
}

// getCaller reports the file and line of the code that called a public log method.
func getCaller() zapcore.EntryCaller {
	var ok bool
	var entryCaller zapcore.EntryCaller
	// getCaller <- newLogEntry <- logAt <- public method <- caller
	const skipToLogCaller = 4
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true

	if runtimeFunc := runtime.FuncForPC(entryCaller.PC); runtimeFunc != nil {
		entryCaller.Function = runtimeFunc.Name()
	}

	return entryCaller
}
