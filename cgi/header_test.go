package cgi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procshim/cgiway/cgi"
)

func TestHeader_CaseInsensitive(t *testing.T) {
	var h cgi.Header

	h.Set("content-type", "text/html")

	assert.Equal(t, "text/html", h.Get("Content-Type"))
	assert.Equal(t, "text/html", h.Get("CONTENT-TYPE"))
	assert.True(t, h.Has("Content-type"))
}

func TestHeader_SetReplacesInPlace(t *testing.T) {
	var h cgi.Header

	h.Set("A", "1")
	h.Set("B", "2")
	h.Set("a", "3")

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []cgi.HeaderField{
		{Name: "A", Value: "3"},
		{Name: "B", Value: "2"},
	}, h.Fields())
}

func TestHeader_Del(t *testing.T) {
	var h cgi.Header

	h.Set("X-One", "1")
	h.Set("X-Two", "2")
	h.Del("x-one")

	assert.False(t, h.Has("X-One"))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "", h.Get("X-One"))
}

func TestHeader_FieldsIsACopy(t *testing.T) {
	var h cgi.Header

	h.Set("X-One", "1")

	fields := h.Fields()
	fields[0].Value = "mutated"

	assert.Equal(t, "1", h.Get("X-One"))
}
