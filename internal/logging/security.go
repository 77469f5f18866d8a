// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	eventSystemStartup   = "sys_startup"
	eventSystemShutdown  = "sys_shutdown"
	eventAuthnFailure    = "authn_fail"
	eventAuthzFailure    = "authz_fail"
	eventInputValidation = "input_validation_fail"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

// SecurityLogger emits events following the OWASP application logging vocabulary
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.log(zap.InfoLevel, eventSystemStartup, "system started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.log(zap.InfoLevel, eventSystemShutdown, "system shutting down")
}

func (s *SecurityLogger) AuthnFailure(reason string) {
	s.log(zap.WarnLevel, eventAuthnFailure, fmt.Sprintf("authentication failed: %s", reason))
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.log(
		zap.WarnLevel,
		fmt.Sprintf("%s:%s,%s", eventAuthzFailure, userID, resource),
		fmt.Sprintf("user %s attempted to access %s without entitlement", userID, resource),
	)
}

func (s *SecurityLogger) InputValidationFailure(source, reason string) {
	s.log(
		zap.WarnLevel,
		fmt.Sprintf("%s:%s", eventInputValidation, source),
		reason,
	)
}

func (s *SecurityLogger) log(level zapcore.Level, event, description string) {
	if ce := s.l.Check(level, description); ce != nil {
		ce.Write(
			zap.String("type", "security"),
			zap.String("event", event),
		)
	}
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
