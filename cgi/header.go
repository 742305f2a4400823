package cgi

import "net/textproto"

// Header holds the header fields of a Request or Response. Field names are
// case-insensitive and unique; insertion order is preserved, so response
// serialization emits fields in the order the caller set them.
//
// The zero value is ready to use.
type Header struct {
	fields []HeaderField
}

// HeaderField is a single name/value pair.
type HeaderField struct {
	Name  string
	Value string
}

// CanonicalHeaderKey normalizes a header name per MIME convention,
// e.g. "x-custom" becomes "X-Custom".
func CanonicalHeaderKey(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// Set stores value under name, replacing any existing field with the same
// canonical name in place.
func (h *Header) Set(name, value string) {
	name = CanonicalHeaderKey(name)
	for i, f := range h.fields {
		if f.Name == name {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Get returns the value stored under name, or the empty string.
func (h *Header) Get(name string) string {
	name = CanonicalHeaderKey(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Has reports whether a field with the given name exists.
func (h *Header) Has(name string) bool {
	name = CanonicalHeaderKey(name)
	for _, f := range h.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Del removes the field with the given name, if present.
func (h *Header) Del(name string) {
	name = CanonicalHeaderKey(name)
	for i, f := range h.fields {
		if f.Name == name {
			h.fields = append(h.fields[:i], h.fields[i+1:]...)
			return
		}
	}
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the fields in insertion order.
func (h *Header) Fields() []HeaderField {
	fields := make([]HeaderField, len(h.fields))
	copy(fields, h.fields)
	return fields
}
