//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/behave/internal/core/observability/log"
)

func InitializeRuntime(level log.Level) (*Runtime, func(), error) {
	wire.Build(RuntimeSet)
	return nil, nil, nil
}
