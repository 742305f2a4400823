package runtime

import (
	"sort"

	"github.com/procshim/cgiway/cgi"
)

// WireRequest is the JSON payload sent to a worker process, carrying one
// translated CGI request. The body travels base64-encoded.
type WireRequest struct {
	Method   string            `json:"method"`
	Target   string            `json:"target"`
	Protocol string            `json:"protocol"`
	Header   map[string]string `json:"header,omitempty"`
	Body     []byte            `json:"body,omitempty"`
}

// WireResponse is the JSON payload a worker replies with.
type WireResponse struct {
	Status int               `json:"status"`
	Header map[string]string `json:"header,omitempty"`
	Body   []byte            `json:"body,omitempty"`
}

// EncodeRequest flattens a cgi.Request into its wire form.
func EncodeRequest(req cgi.Request) WireRequest {
	wire := WireRequest{
		Method:   req.Method,
		Target:   req.Target,
		Protocol: req.Proto,
		Body:     req.Body,
	}

	if req.Header.Len() > 0 {
		wire.Header = make(map[string]string, req.Header.Len())
		for _, f := range req.Header.Fields() {
			wire.Header[f.Name] = f.Value
		}
	}

	return wire
}

// DecodeResponse converts a worker reply into a cgi.Response. JSON objects
// carry no field order, so headers are emitted in sorted name order to keep
// serialization deterministic.
func DecodeResponse(wire WireResponse) cgi.Response {
	resp := cgi.Response{
		StatusCode: wire.Status,
		Body:       wire.Body,
	}

	names := make([]string, 0, len(wire.Header))
	for name := range wire.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		resp.Header.Set(name, wire.Header[name])
	}

	return resp
}
