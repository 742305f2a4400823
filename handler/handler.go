// Package handler exposes the CGI translation pipeline as an http.Handler,
// so the same worker-backed gateway can be hosted off a CGI host.
package handler

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/procshim/cgiway/cgi"
	"github.com/procshim/cgiway/runtime"
)

type GatewayHandlerParams struct {
	fx.In

	Runtime runtime.Runtime
	Log     *zap.Logger
}

func NewGatewayHandler(params GatewayHandlerParams) *GatewayHandler {
	return &GatewayHandler{
		runtime: params.Runtime,
		log:     params.Log,
	}
}

// GatewayHandler serves HTTP by translating each request through the CGI
// pipeline: request → meta-variable environment → cgi.Request → worker →
// cgi.Response → HTTP response.
type GatewayHandler struct {
	runtime runtime.Runtime
	log     *zap.Logger
}

func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)

	req := cgi.BuildRequest(RequestEnv(r), r.Body)

	resp, err := runtime.Handler(r.Context(), h.runtime, log)(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, f := range resp.Header.Fields() {
		w.Header().Set(f.Name, f.Value)
	}

	w.WriteHeader(resp.StatusCode)

	if _, err := w.Write(resp.Body); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}
