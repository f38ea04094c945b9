// Package service implements the application's business logic on top of the
// storage layer. Services validate input, enforce verification gating, and
// emit live events for committed changes.
package service

import (
	"github.com/campuswall/campuswall-server/internal/sse"
	"github.com/campuswall/campuswall-server/internal/validation"
)

// validate is a shared validator instance for request validation.
var validate = validation.New()

// Notifier delivers live events to connected clients.
// sse.Manager is the production implementation.
type Notifier interface {
	Emit(event any)
	EmitToUser(userID string, event sse.Event)
}

// NoopNotifier discards all events. Used in tests and batch tooling.
type NoopNotifier struct{}

// Emit discards the event.
func (NoopNotifier) Emit(any) {}

// EmitToUser discards the event.
func (NoopNotifier) EmitToUser(string, sse.Event) {}
