package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/procshim/cgiway/cgi"
	"github.com/procshim/cgiway/config"
	"github.com/procshim/cgiway/runtime"
	"github.com/procshim/cgiway/util/conf"
	"github.com/procshim/cgiway/util/logging"
)

var (
	handleCmdDescription = `The handle command translates a single CGI invocation for a
worker process: the CGI environment and stdin are turned into
a request message, sent to the worker over its stdio, and the
worker's reply is written to stdout in the CGI output format.

The command is intended to be installed as the CGI executable
of a host web server. It handles exactly one request and then
exits; the exit code is zero unless writing the response to
stdout failed.`
	handleCmd = &cli.Command{
		Name:        "handle",
		Usage:       "Translate one CGI invocation for a worker process.",
		Description: handleCmdDescription,
		Action:      handleAction,
	}
)

func handleAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	rt, err := runtime.New(cfg.Runtime, log)
	if err != nil {
		return err
	}
	defer rt.Shutdown(ctx.Context)

	// one request per process: plain function composition, no fx
	return cgi.Handle(
		cgi.OSEnv(),
		os.Stdin,
		os.Stdout,
		runtime.Handler(ctx.Context, rt, log),
	)
}

func init() {
	rootApp.Commands = append(rootApp.Commands, handleCmd)
}
