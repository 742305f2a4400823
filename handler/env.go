package handler

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/procshim/cgiway/cgi"
)

// RequestEnv builds the RFC 3875 meta-variable set for an incoming HTTP
// request, so hosted modes feed the exact same translation path a real CGI
// host would. A body of unknown length is consumed into a buffer that
// replaces r.Body, so CONTENT_LENGTH always reflects the bytes a
// subsequent read of r.Body yields.
func RequestEnv(r *http.Request) cgi.Env {
	env := cgi.Env{
		"GATEWAY_INTERFACE": "CGI/1.1",
		"SERVER_SOFTWARE":   "cgiway",
		"REQUEST_METHOD":    r.Method,
		"SERVER_PROTOCOL":   r.Proto,
		"SCRIPT_NAME":       "",
		"PATH_INFO":         r.URL.Path,
		"QUERY_STRING":      r.URL.RawQuery,
		"REQUEST_URI":       r.URL.RequestURI(),
	}

	if host, port, err := net.SplitHostPort(r.Host); err == nil {
		env["SERVER_NAME"] = host
		env["SERVER_PORT"] = port
	} else if r.Host != "" {
		env["SERVER_NAME"] = r.Host
		env["SERVER_PORT"] = "80"
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env["REMOTE_ADDR"] = host
	} else if r.RemoteAddr != "" {
		env["REMOTE_ADDR"] = r.RemoteAddr
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		env["CONTENT_TYPE"] = ct
	}
	switch {
	case r.ContentLength >= 0:
		env["CONTENT_LENGTH"] = strconv.FormatInt(r.ContentLength, 10)
	case r.Body != nil:
		// chunked or otherwise unknown length: buffer the body so the
		// actual size can be declared
		var buf bytes.Buffer
		io.Copy(&buf, r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(&buf)
		env["CONTENT_LENGTH"] = strconv.Itoa(buf.Len())
	default:
		env["CONTENT_LENGTH"] = "0"
	}

	for name, values := range r.Header {
		switch name {
		case "Content-Type", "Content-Length":
			// mapped to their dedicated meta-variables above
			continue
		}
		key := "HTTP_" + strings.ReplaceAll(strings.ToUpper(name), "-", "_")
		env[key] = strings.Join(values, ", ")
	}

	return env
}
