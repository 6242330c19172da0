// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log is the process-wide leveled logger used by every other
// package in btccore. It wraps a zap.SugaredLogger so that call sites log
// through a small, stable interface instead of depending on zap directly.
package log

import (
	"go.uber.org/zap"
)

// Logger is the leveled-logging surface every package in this module uses.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (z *zapLogger) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }

var backend Logger = newDefault()

func newDefault() Logger {
	cfg := zap.NewDevelopmentConfig()
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Falling back to a no-op logger is preferable to panicking out of
		// a library import; callers that care can call SetBackend.
		return &zapLogger{s: zap.NewNop().Sugar()}
	}
	return &zapLogger{s: l.Sugar()}
}

// SetBackend replaces the process-wide logger, e.g. to point at a
// caller-supplied zap.Logger or to silence logging entirely in tests.
func SetBackend(l Logger) {
	backend = l
}

func Debugf(format string, args ...interface{}) { backend.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { backend.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { backend.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { backend.Errorf(format, args...) }
