package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/behave/internal/core/agent"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Runtime is everything a host process needs to load and drive agents.
type Runtime struct {
	Logger  log.Log
	Events  bus.EventBus
	Manager *agent.Manager
}

var RuntimeSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	agent.NewManager,
	wire.Struct(new(Runtime), "*"),
)

// ProvideLogger builds the process logger; the cleanup flushes it.
func ProvideLogger(level log.Level) (log.Log, func()) {
	logger := log.New(level)
	return logger, func() { _ = logger.Sync() }
}
