// Package cgi lets a program act as a CGI (RFC 3875) process while
// presenting a structured request/response abstraction to handler code.
//
// A CGI program calls Serve (or ServeError) from main:
//
//	func main() {
//		cgi.Serve(func(req cgi.Request) cgi.Response {
//			return cgi.HTMLResponse(200, "<h1>hello</h1>")
//		})
//	}
//
// The package reconstructs the HTTP request from the environment variables
// and stdin bytes the host server provides, invokes the handler exactly
// once, and serializes the handler's response to stdout in the byte format
// the host expects. One process handles exactly one request.
package cgi

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

// Handler processes one reconstructed request and returns the response to
// serialize. It is invoked exactly once per process.
type Handler func(Request) Response

// ErrorHandler is the fallible handler variant. A returned error is
// converted into a 500 response carrying the error text; it never aborts
// the process.
type ErrorHandler func(Request) (Response, error)

// Handle runs one full translation cycle against explicit inputs and
// outputs: build the request from env and stdin, invoke the handler, and
// serialize the response to stdout. The returned error is a write failure
// on stdout; handler errors are absorbed into an error response.
func Handle(env Env, stdin io.Reader, stdout io.Writer, handler ErrorHandler) error {
	req := BuildRequest(env, stdin)

	resp, err := handler(req)
	if err != nil {
		resp = errorResponse(err)
	}

	return WriteResponse(stdout, resp)
}

// Serve runs handler as a CGI program against the real process environment,
// stdin and stdout. On a stdout write failure it exits with a nonzero
// status; otherwise it returns and the process exits normally. The HTTP
// status is carried in the output, not in the exit code.
func Serve(handler Handler) {
	ServeError(func(req Request) (Response, error) {
		return handler(req), nil
	})
}

// ServeError is Serve for fallible handlers.
func ServeError(handler ErrorHandler) {
	if err := Handle(OSEnv(), os.Stdin, os.Stdout, handler); err != nil {
		fmt.Fprintf(os.Stderr, "cgi: write response: %v\n", err)
		os.Exit(1)
	}
}

func errorResponse(err error) Response {
	return TextResponse(http.StatusInternalServerError, err.Error())
}
