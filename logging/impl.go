package logging

import (
	"go.uber.org/zap"
)

type impl struct {
	name    string
	level   zap.AtomicLevel
	sugared *zap.SugaredLogger
}

func newImpl(name string, level Level) *impl {
	config := NewLoggerConfig()
	config.Level = zap.NewAtomicLevelAt(level.AsZap())
	return &impl{
		name:    name,
		level:   config.Level,
		sugared: zap.Must(config.Build(zap.AddCallerSkip(1))).Sugar().Named(name),
	}
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:    name,
		level:   imp.level,
		sugared: imp.sugared.Named(subname),
	}
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	switch imp.level.Level() {
	case DEBUG.AsZap():
		return DEBUG
	case WARN.AsZap():
		return WARN
	case ERROR.AsZap():
		return ERROR
	default:
		return INFO
	}
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugared
}

func (imp *impl) Sync() error {
	return imp.sugared.Sync()
}

func (imp *impl) Debug(args ...interface{}) { imp.sugared.Debug(args...) }
func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.sugared.Debugf(template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.sugared.Info(args...) }
func (imp *impl) Infof(template string, args ...interface{}) {
	imp.sugared.Infof(template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugared.Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.sugared.Warn(args...) }
func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.sugared.Warnf(template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.sugared.Error(args...) }
func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.sugared.Errorf(template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Errorw(msg, keysAndValues...)
}
