package cgi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Response is the structured form of the reply a handler produces. It is
// serialized to the host server in the CGI output format by WriteResponse.
type Response struct {
	// StatusCode is the HTTP status code, e.g. 200.
	StatusCode int

	// Header holds the response header fields. Serialization preserves
	// the order in which fields were set.
	Header Header

	// Body is the raw response body, written verbatim.
	Body []byte
}

// EmptyResponse returns a Response with the given status code and no body.
func EmptyResponse(status int) Response {
	return Response{StatusCode: status}
}

// TextResponse returns a plain text Response with the given status code.
func TextResponse(status int, body string) Response {
	resp := Response{StatusCode: status, Body: []byte(body)}
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	return resp
}

// HTMLResponse returns an HTML Response with the given status code.
func HTMLResponse(status int, body string) Response {
	resp := Response{StatusCode: status, Body: []byte(body)}
	resp.Header.Set("Content-Type", "text/html")
	resp.Header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	return resp
}

// BinaryResponse returns a Response carrying the given bytes unmodified.
func BinaryResponse(status int, body []byte) Response {
	resp := Response{StatusCode: status, Body: body}
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return resp
}

// ReasonPhrase returns the standard reason phrase for a status code, or
// "Unknown" for codes without one.
func ReasonPhrase(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}

// WriteResponse serializes resp in the CGI output format and writes it to w:
// a "Status:" line, the header fields in caller order, a blank line, then
// the body. A Content-Length field derived from the body is appended unless
// the caller already set one. The header block is fully written before any
// body bytes. A write error on w is the only possible failure.
func WriteResponse(w io.Writer, resp Response) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Status: %d %s\r\n", resp.StatusCode, ReasonPhrase(resp.StatusCode))

	for _, f := range resp.Header.Fields() {
		fmt.Fprintf(&buf, "%s: %s\r\n", f.Name, f.Value)
	}
	if !resp.Header.Has("Content-Length") {
		fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(resp.Body))
	}

	buf.WriteString("\r\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	}

	return nil
}
