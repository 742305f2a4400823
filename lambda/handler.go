// Package lambda hosts the gateway handler as an AWS Lambda runtime
// interface client, so a containerized worker can be invoked by Lambda
// without further dependencies.
package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/procshim/cgiway/handler"
)

type LambdaHandlerParams struct {
	fx.In

	Context context.Context
	Handler *handler.GatewayHandler
	Logger  *zap.Logger
}

type LambdaHandler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	handler *handler.GatewayHandler
	log     *zap.Logger
}

func NewLambdaHandler(params LambdaHandlerParams) *LambdaHandler {
	ctx, cancel := context.WithCancel(params.Context)

	return &LambdaHandler{
		ctx:     ctx,
		cancel:  cancel,
		handler: params.Handler,
		log:     params.Logger,
	}
}

func NewLifecycleHandler(params LambdaHandlerParams, lc fx.Lifecycle) *LambdaHandler {
	h := NewLambdaHandler(params)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go h.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			h.Shutdown()
			return nil
		},
	})
	return h
}

func (s *LambdaHandler) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handler.ServeHTTP)

	lambda.StartWithOptions(
		httpadapter.New(mux).ProxyWithContext,
		lambda.WithContext(s.ctx),
	)
}

func (s *LambdaHandler) Shutdown() {
	s.cancel()
}
