package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/procshim/cgiway/app"
	"github.com/procshim/cgiway/standalone"
)

var (
	serveCmdDescription = `The serve command starts a http server and routes incoming
requests through the same CGI translation pipeline the handle
command uses. This allows worker processes to be exercised
without a CGI host, e.g. during local development.

The command launches the http server and blocks indefinitely,
processing incoming http requests.`
	serveCmd = &cli.Command{
		Name:        "serve",
		Usage:       "Start a http server and listen for requests.",
		Description: serveCmdDescription,
		Action:      serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "localhost",
				Category: "http",
				EnvVars:  []string{"HTTP_HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8080,
				Category: "http",
				EnvVars:  []string{"HTTP_PORT"},
			},
			&cli.BoolFlag{
				Name:     "h2c",
				Usage:    "Enable HTTP/2 cleartext upgrade.",
				Value:    false,
				Category: "http",
				EnvVars:  []string{"HTTP_H2C"},
			},
		},
	}
)

func serveAction(ctx *cli.Context) error {
	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	httpConfig := standalone.HttpConfig{
		Host: ctx.String("host"),
		Port: ctx.Int("port"),
		H2c:  ctx.Bool("h2c"),
	}

	return app.Run(ctx.Context, standalone.Module(httpConfig))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, serveCmd)
}
