package cgi_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procshim/cgiway/cgi"
)

func TestBuildRequest_MethodAndBody(t *testing.T) {
	env := cgi.Env{
		"REQUEST_METHOD": "POST",
		"CONTENT_LENGTH": "5",
	}

	req := cgi.BuildRequest(env, strings.NewReader("hello"))

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, []byte("hello"), req.Body)
	assert.Equal(t, "5", req.Header.Get("Content-Length"))
}

func TestBuildRequest_Defaults(t *testing.T) {
	req := cgi.BuildRequest(cgi.Env{}, nil)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/", req.Target)
	assert.Equal(t, "HTTP/1.1", req.Proto)
	assert.Empty(t, req.Body)
}

func TestBuildRequest_Headers(t *testing.T) {
	env := cgi.Env{
		"HTTP_X_CUSTOM":   "val",
		"HTTP_USER_AGENT": " MyBrowser/1.0 ",
	}

	req := cgi.BuildRequest(env, nil)

	assert.Equal(t, "val", req.Header.Get("X-Custom"))
	assert.Equal(t, "MyBrowser/1.0", req.Header.Get("User-Agent"))
}

func TestBuildRequest_ContentHeadersNotDuplicated(t *testing.T) {
	env := cgi.Env{
		"CONTENT_TYPE":      "application/json",
		"CONTENT_LENGTH":    "0",
		"HTTP_CONTENT_TYPE": "text/plain",
	}

	req := cgi.BuildRequest(env, nil)

	count := 0
	for _, f := range req.Header.Fields() {
		if f.Name == "Content-Type" {
			count++
		}
	}

	assert.Equal(t, 1, count)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "0", req.Header.Get("Content-Length"))
}

func TestBuildRequest_Target(t *testing.T) {
	tests := []struct {
		name   string
		env    cgi.Env
		target string
	}{
		{
			name:   "request uri",
			env:    cgi.Env{"REQUEST_URI": "/foo/bar"},
			target: "/foo/bar",
		},
		{
			name:   "script name and path info",
			env:    cgi.Env{"SCRIPT_NAME": "/cgi-bin/app", "PATH_INFO": "/extra"},
			target: "/cgi-bin/app/extra",
		},
		{
			name:   "query string appended",
			env:    cgi.Env{"SCRIPT_NAME": "/app", "QUERY_STRING": "a=1&b=2"},
			target: "/app?a=1&b=2",
		},
		{
			name:   "query string not appended twice",
			env:    cgi.Env{"REQUEST_URI": "/app?a=1", "QUERY_STRING": "a=1"},
			target: "/app?a=1",
		},
		{
			name:   "empty path falls back to root",
			env:    cgi.Env{"QUERY_STRING": "a=1"},
			target: "/?a=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cgi.BuildRequest(tt.env, nil)
			assert.Equal(t, tt.target, req.Target)
		})
	}
}

func TestBuildRequest_ShortRead(t *testing.T) {
	env := cgi.Env{"CONTENT_LENGTH": "10"}

	req := cgi.BuildRequest(env, strings.NewReader("abc"))

	assert.Len(t, req.Body, 3)
	assert.Equal(t, []byte("abc"), req.Body)
	// declared length is kept, actual length may differ
	assert.Equal(t, "10", req.Header.Get("Content-Length"))
}

func TestBuildRequest_MalformedContentLength(t *testing.T) {
	tests := []string{"", "abc", "-1", "0"}

	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			env := cgi.Env{"CONTENT_LENGTH": tt}
			stdin := strings.NewReader("should not be read")

			req := cgi.BuildRequest(env, stdin)

			assert.Empty(t, req.Body)
			assert.Equal(t, stdin.Len(), len("should not be read"))
		})
	}
}

func TestBuildRequest_MetaHeaders(t *testing.T) {
	env := cgi.Env{
		"REQUEST_METHOD":    "GET",
		"REMOTE_ADDR":       "192.0.2.7",
		"GATEWAY_INTERFACE": "CGI/1.1",
	}

	req := cgi.BuildRequest(env, nil)

	assert.Equal(t, "192.0.2.7", req.Header.Get("X-Cgi-Remote-Addr"))
	assert.Equal(t, "CGI/1.1", req.Header.Get("X-Cgi-Gateway-Interface"))
	assert.Equal(t, "GET", req.Header.Get("X-Cgi-Request-Method"))
}

func TestParseEnviron(t *testing.T) {
	env := cgi.ParseEnviron([]string{"A=1", "B=x=y", "invalid", "=empty"})

	assert.Equal(t, cgi.Env{"A": "1", "B": "x=y"}, env)
}
