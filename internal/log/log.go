/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package log is the logging sink spec §1 lists as an out-of-scope
// external collaborator, referenced only by the interface it exposes
// to the core. The teacher (badu-http) has no logging package of its
// own; this binds that collaborator interface to go.uber.org/zap, the
// structured logger mined from the rest of the example pack, and uses
// go.uber.org/multierr to fold the handler-error and error-handler
// failure pair spec §7 "Error inside the error handler" describes.
package log

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Logger is the interface the connection engine and listener log
// through. Kept narrow so call sites don't depend on zap directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a production zap logger (JSON encoding, Info level).
func New() (Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: base.Sugar()}, nil
}

// NewDevelopment builds a console-friendly, debug-level logger, for
// the example app and tests.
func NewDevelopment() (Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: base.Sugar()}, nil
}

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l *zapLogger) Sync() error                               { return l.s.Sync() }

// CombineHandlerErrors folds a handler failure and a subsequent
// error-handler failure into one error, per spec §7 "Error inside the
// error handler": the default page must list both exceptions.
func CombineHandlerErrors(handlerErr, errorHandlerErr error) error {
	return multierr.Append(handlerErr, errorHandlerErr)
}
