// Package app assembles the shared dependency graph for the hosted modes.
package app

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/procshim/cgiway/config"
	"github.com/procshim/cgiway/internal/shell"
	"github.com/procshim/cgiway/runtime"
	"github.com/procshim/cgiway/util/conf"
	"github.com/procshim/cgiway/util/logging"
)

// New creates a shell with the shared module: global config, worker runtime
// config and the worker runtime itself.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(cfg),
		// provide worker runtime config
		fx.Supply(cfg.Runtime),
		// provide worker runtime
		runtime.Module(),
	)

	return shell.New(log, sharedModule), nil
}
