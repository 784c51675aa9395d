package service

import "context"

// Notifier is the pluggable push channel behind the query API. The SSE broker
// implements it; a no-op implementation keeps the orchestrator working on
// polling alone.
type Notifier interface {
	PublishPhase(ctx context.Context, sessionID string, phase string) error
	PublishJoin(ctx context.Context, sessionID string, nickname string) error
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) PublishPhase(context.Context, string, string) error { return nil }
func (NopNotifier) PublishJoin(context.Context, string, string) error  { return nil }
