package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/procshim/cgiway/config"
	"github.com/procshim/cgiway/internal/shell"
	"github.com/procshim/cgiway/util/conf"
	"github.com/procshim/cgiway/util/logging"
)

var (
	appName  = "cgiway"
	appUsage = `A shim for running arbitrary, language-agnostic request
workers behind CGI (RFC 3875) hosts.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Args:            true,
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.PathFlag{
				Name:    "config",
				Usage:   "load configuration from a json or dotenv file.",
				EnvVars: []string{"CGIWAY_CONFIG"},
			},
			// worker flags
			&cli.StringFlag{
				Name:     "command",
				Usage:    "the command to invoke in order to start the worker process.",
				Aliases:  []string{"c"},
				Category: "worker",
				EnvVars:  []string{"WORKER_COMMAND"},
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "arg",
				Usage:    "additional arguments to pass to the worker process.",
				Aliases:  []string{"a"},
				Category: "worker",
				EnvVars:  []string{"WORKER_ARGS"},
			},
			&cli.PathFlag{
				Name:     "cwd",
				Usage:    "the working directory for the worker process.",
				Category: "worker",
				EnvVars:  []string{"WORKER_CWD"},
			},
			&cli.BoolFlag{
				Name:     "disposable",
				Usage:    "stop the worker process after handling a single request.",
				Aliases:  []string{"d"},
				Category: "worker",
				EnvVars:  []string{"WORKER_DISPOSABLE"},
			},
			&cli.IntFlag{
				Name:     "max-workers",
				Usage:    "the maximum number of concurrently running worker processes.",
				Aliases:  []string{"n"},
				Value:    1,
				Category: "worker",
				EnvVars:  []string{"WORKER_MAX_PROCS"},
			},
			&cli.DurationFlag{
				Name:     "send-timeout",
				Usage:    "the time to wait for a worker to answer a request.",
				Value:    30 * time.Second,
				Category: "worker",
				EnvVars:  []string{"WORKER_SEND_TIMEOUT"},
			},
			&cli.DurationFlag{
				Name:     "stop-timeout",
				Usage:    "the time to wait for a worker to stop gracefully.",
				Value:    5 * time.Second,
				Category: "worker",
				EnvVars:  []string{"WORKER_STOP_TIMEOUT"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// create the logger
			log, err := createLogger(ctx)
			if err != nil {
				return err
			}

			// inject logger into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)

			// parse config using defaults, file, env and cli flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Cli:       ctx,
				CliMap:    cliConfigMap,
				Defaults:  config.DefaultConfig,
				EnvPrefix: "CGIWAY_",
				FileName:  ctx.Path("config"),
				Log:       log,
			})
			if err != nil {
				return err
			}

			// inject the config into the cli context
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return err
			}

			log.Sync()

			return nil
		},
	}

	// cliConfigMap maps cli flag names to config keys.
	cliConfigMap = map[string]string{
		"command":      "runtime.command",
		"arg":          "runtime.args",
		"cwd":          "runtime.cwd",
		"disposable":   "runtime.disposable",
		"max-workers":  "runtime.max_workers",
		"send-timeout": "runtime.send_timeout",
		"stop-timeout": "runtime.stop_timeout",
	}
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

func Execute(params ExecuteParams) {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	run(context.Background(), os.Args)
}

func run(ctx context.Context, args []string) {
	err := rootApp.RunContext(ctx, args)

	// if app exited without error, return
	if err == nil {
		return
	}

	// shells communicate their exit code via ExitError
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "exit error: %s\n", err.Error())

	os.Exit(1)
}

// createLogger builds the application logger. All log output goes to
// stderr: in CGI mode, stdout carries the response bytes.
func createLogger(ctx *cli.Context) (*zap.Logger, error) {
	level := getLogLevelFromCLI(ctx)
	format := getLogFormatFromCLI(ctx)

	var cfg zap.Config
	if format == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.InitialFields = map[string]any{
		"app": appName,
	}

	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

func getLogFormatFromCLI(ctx *cli.Context) string {
	if format := ctx.String("log-format"); format != "" {
		return format
	}

	return "production"
}

func getLogLevelFromCLI(ctx *cli.Context) zap.AtomicLevel {
	lvl := ctx.String("log-level")

	if atom, err := zap.ParseAtomicLevel(lvl); err == nil {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}
