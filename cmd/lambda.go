package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/procshim/cgiway/app"
	"github.com/procshim/cgiway/lambda"
)

var (
	lambdaCmdDescription = `The lambda command starts the shim as an AWS Lambda runtime
interface client, routing Lambda events through the same CGI
translation pipeline the handle command uses. This allows a
dockerized worker to be deployed to AWS Lambda without any
additional dependencies.

The command starts the AWS runtime interface client and blocks
indefinitely, processing incoming AWS Lambda events.`
	lambdaCmd = &cli.Command{
		Name:        "lambda",
		Usage:       "Run the AWS Lambda handler.",
		Description: lambdaCmdDescription,
		Action:      lambdaAction,
	}
)

func lambdaAction(ctx *cli.Context) error {
	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	return app.Run(ctx.Context, lambda.Module())
}

func init() {
	rootApp.Commands = append(rootApp.Commands, lambdaCmd)
}
