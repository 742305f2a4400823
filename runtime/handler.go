package runtime

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/procshim/cgiway/cgi"
)

// wellKnownErrors maps runtime failures to the gateway status they should
// surface as. Anything else propagates as a handler error.
var wellKnownErrors = []struct {
	err    error
	status int
}{
	{ErrInvalidRequest, http.StatusBadGateway},
	{ErrInvalidResponse, http.StatusBadGateway},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// Handler adapts a Runtime into a cgi.ErrorHandler. Protocol-level worker
// failures become gateway error responses; unexpected errors are returned
// to the dispatcher, which converts them into a 500.
func Handler(ctx context.Context, rt Runtime, log *zap.Logger) cgi.ErrorHandler {
	return func(req cgi.Request) (cgi.Response, error) {
		resp, err := rt.Handle(ctx, req)
		if err == nil {
			return resp, nil
		}

		log.Error("worker request failed",
			zap.String("method", req.Method),
			zap.String("target", req.Target),
			zap.Error(err),
		)

		for _, known := range wellKnownErrors {
			if errors.Is(err, known.err) {
				return cgi.TextResponse(known.status, err.Error()), nil
			}
		}

		return cgi.Response{}, err
	}
}
