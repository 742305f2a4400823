package cgi

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

// Request is the structured form of one CGI invocation. It is built once
// per process from the environment snapshot and the request body on stdin,
// and is never mutated afterwards.
type Request struct {
	// Method is the HTTP method token, e.g. "GET" or "POST".
	Method string

	// Target is the request path, including the query string if one
	// was supplied.
	Target string

	// Proto is the protocol version token, e.g. "HTTP/1.1".
	Proto string

	// Header holds the request header fields reconstructed from the
	// environment.
	Header Header

	// Body is the raw request body, possibly empty.
	Body []byte
}

// metaHeaders lists the CGI meta-variables that are surfaced to handlers
// as X-Cgi-* headers, since they have no HTTP header equivalent.
var metaHeaders = []struct {
	envKey string
	name   string
}{
	{"AUTH_TYPE", "X-Cgi-Auth-Type"},
	{"CONTENT_LENGTH", "X-Cgi-Content-Length"},
	{"CONTENT_TYPE", "X-Cgi-Content-Type"},
	{"GATEWAY_INTERFACE", "X-Cgi-Gateway-Interface"},
	{"PATH_INFO", "X-Cgi-Path-Info"},
	{"PATH_TRANSLATED", "X-Cgi-Path-Translated"},
	{"QUERY_STRING", "X-Cgi-Query-String"},
	{"REMOTE_ADDR", "X-Cgi-Remote-Addr"},
	{"REMOTE_HOST", "X-Cgi-Remote-Host"},
	{"REMOTE_IDENT", "X-Cgi-Remote-Ident"},
	{"REMOTE_USER", "X-Cgi-Remote-User"},
	{"REQUEST_METHOD", "X-Cgi-Request-Method"},
	{"SCRIPT_NAME", "X-Cgi-Script-Name"},
	{"SERVER_NAME", "X-Cgi-Server-Name"},
	{"SERVER_PORT", "X-Cgi-Server-Port"},
	{"SERVER_PROTOCOL", "X-Cgi-Server-Protocol"},
	{"SERVER_SOFTWARE", "X-Cgi-Server-Software"},
}

// BuildRequest reconstructs the HTTP request described by env, reading the
// request body from stdin. It never fails: missing or malformed variables
// degrade to defaults, so the same binary stays usable outside a CGI host.
//
// Defaults: method "GET", target "/", protocol "HTTP/1.1", empty body.
func BuildRequest(env Env, stdin io.Reader) Request {
	req := Request{
		Method: env.Get("REQUEST_METHOD", "GET"),
		Proto:  env.Get("SERVER_PROTOCOL", "HTTP/1.1"),
		Target: requestTarget(env),
	}

	// Env iteration order is random; sort for deterministic header order.
	keys := make([]string, 0, len(env))
	for key := range env {
		if strings.HasPrefix(key, "HTTP_") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := strings.ReplaceAll(key[len("HTTP_"):], "_", "-")
		req.Header.Set(name, strings.TrimSpace(env[key]))
	}

	// CONTENT_TYPE and CONTENT_LENGTH are not HTTP_-prefixed per RFC 3875.
	// The direct mapping wins over anything the HTTP_ rule produced.
	if v, ok := env["CONTENT_TYPE"]; ok {
		req.Header.Set("Content-Type", v)
	}
	if v, ok := env["CONTENT_LENGTH"]; ok {
		req.Header.Set("Content-Length", v)
	}

	for _, meta := range metaHeaders {
		if v, ok := env[meta.envKey]; ok {
			req.Header.Set(meta.name, v)
		}
	}

	req.Body = readBody(env, stdin)

	return req
}

func requestTarget(env Env) string {
	target := env["REQUEST_URI"]
	if target == "" {
		target = env["SCRIPT_NAME"] + env["PATH_INFO"]
	}
	if target == "" {
		target = "/"
	}

	// REQUEST_URI may already carry the query string.
	if qs := env["QUERY_STRING"]; qs != "" && !strings.Contains(target, "?") {
		target += "?" + qs
	}

	return target
}

// readBody reads up to CONTENT_LENGTH bytes from stdin. An absent,
// malformed or zero CONTENT_LENGTH yields an empty body without touching
// stdin. A general read-to-end would block on hosts that keep the stream
// open, so the read is bounded by the declared length.
func readBody(env Env, stdin io.Reader) []byte {
	length, err := strconv.Atoi(env["CONTENT_LENGTH"])
	if err != nil || length <= 0 || stdin == nil {
		return nil
	}

	// Hosts may promise more bytes than they deliver; keep what arrived.
	body := make([]byte, length)
	n, _ := io.ReadFull(stdin, body)

	return body[:n]
}
