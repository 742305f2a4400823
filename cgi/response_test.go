package cgi_test

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procshim/cgiway/cgi"
)

func TestWriteResponse_InjectsContentLength(t *testing.T) {
	var buf bytes.Buffer

	resp := cgi.Response{StatusCode: 200, Body: []byte("hi")}

	err := cgi.WriteResponse(&buf, resp)

	require.NoError(t, err)
	assert.Equal(t, "Status: 200 OK\r\nContent-Length: 2\r\n\r\nhi", buf.String())
}

func TestWriteResponse_PreservesHeaderOrder(t *testing.T) {
	var buf bytes.Buffer

	resp := cgi.Response{StatusCode: 404, Body: []byte("nope")}
	resp.Header.Set("Content-Type", "text/plain")
	resp.Header.Set("Cache-Control", "no-store")

	err := cgi.WriteResponse(&buf, resp)

	require.NoError(t, err)
	assert.Equal(t,
		"Status: 404 Not Found\r\n"+
			"Content-Type: text/plain\r\n"+
			"Cache-Control: no-store\r\n"+
			"Content-Length: 4\r\n"+
			"\r\n"+
			"nope",
		buf.String())
}

func TestWriteResponse_NoDuplicateContentLength(t *testing.T) {
	var buf bytes.Buffer

	resp := cgi.Response{StatusCode: 200, Body: []byte("hi")}
	resp.Header.Set("Content-Length", "999")

	err := cgi.WriteResponse(&buf, resp)

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "Content-Length"))
	assert.Contains(t, buf.String(), "Content-Length: 999\r\n")
}

func TestWriteResponse_UnknownStatus(t *testing.T) {
	var buf bytes.Buffer

	err := cgi.WriteResponse(&buf, cgi.EmptyResponse(599))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "Status: 599 Unknown\r\n"))
}

func TestWriteResponse_RoundTrip(t *testing.T) {
	resp := cgi.Response{StatusCode: 201, Body: []byte("созданный")}
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Header.Set("X-Request-Id", "abc-123")

	var buf bytes.Buffer
	require.NoError(t, cgi.WriteResponse(&buf, resp))

	head, body, found := strings.Cut(buf.String(), "\r\n\r\n")
	require.True(t, found)

	lines := strings.Split(head, "\r\n")
	require.GreaterOrEqual(t, len(lines), 1)
	assert.Equal(t, "Status: 201 Created", lines[0])

	headers := map[string]string{}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ": ")
		require.True(t, ok)
		headers[name] = value
	}

	assert.Equal(t, "text/plain; charset=utf-8", headers["Content-Type"])
	assert.Equal(t, "abc-123", headers["X-Request-Id"])
	assert.Equal(t, strconv.Itoa(len(resp.Body)), headers["Content-Length"])
	assert.Equal(t, string(resp.Body), body)
}

// failingWriter fails after n successful writes.
type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("broken pipe")
	}
	w.n--
	return len(p), nil
}

func TestWriteResponse_WriteFailure(t *testing.T) {
	t.Run("header block", func(t *testing.T) {
		err := cgi.WriteResponse(&failingWriter{n: 0}, cgi.TextResponse(200, "hi"))
		assert.Error(t, err)
	})

	t.Run("body", func(t *testing.T) {
		err := cgi.WriteResponse(&failingWriter{n: 1}, cgi.TextResponse(200, "hi"))
		assert.Error(t, err)
	})
}

func TestResponseConstructors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		resp := cgi.EmptyResponse(404)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Empty(t, resp.Body)
		assert.Equal(t, 0, resp.Header.Len())
	})

	t.Run("text", func(t *testing.T) {
		resp := cgi.TextResponse(200, "hello")
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, "5", resp.Header.Get("Content-Length"))
	})

	t.Run("html", func(t *testing.T) {
		resp := cgi.HTMLResponse(200, "<p>hi</p>")
		assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
		assert.Equal(t, "9", resp.Header.Get("Content-Length"))
	})

	t.Run("binary", func(t *testing.T) {
		resp := cgi.BinaryResponse(200, []byte{0x00, 0x01})
		assert.False(t, resp.Header.Has("Content-Type"))
		assert.Equal(t, "2", resp.Header.Get("Content-Length"))
	})
}
