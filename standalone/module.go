package standalone

import (
	"go.uber.org/fx"

	"github.com/procshim/cgiway/handler"
	"github.com/procshim/cgiway/util/logging"
)

func Module(config HttpConfig) fx.Option {
	return fx.Module(
		"serve",
		// rename logger for module
		logging.DecorateLogger("serve"),
		// provide config
		fx.Supply(config),
		// provide gateway handler
		handler.Module(),
		// provide server
		fx.Provide(NewLifecycleServer),
		// invoke server
		fx.Invoke(func(*HttpServer) {}),
	)
}
