package lambda

import (
	"go.uber.org/fx"

	"github.com/procshim/cgiway/handler"
	"github.com/procshim/cgiway/util/logging"
)

func Module() fx.Option {
	return fx.Module(
		"lambda",
		// rename logger for module
		logging.DecorateLogger("lambda"),
		// provide gateway handler
		handler.Module(),
		// provide handler
		fx.Provide(NewLifecycleHandler),
		// invoke handler
		fx.Invoke(func(*LambdaHandler) {}),
	)
}
