package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
)

// Response wraps a single API response for inspection: status code, raw
// body, and the decoded JSON document when the body is valid JSON.
// Non-JSON bodies are tolerated; JSON() reports whether decoding succeeded.
type Response struct {
	// Method and Path describe the request that produced this response.
	Method string
	Path   string

	// Status is the HTTP status code.
	Status int

	// Body is the raw response body.
	Body []byte

	doc     map[string]any
	decoded bool
}

// NewResponse wraps a raw response. Exposed for fakes; the client builds
// responses itself.
func NewResponse(method, path string, status int, body []byte) *Response {
	r := &Response{
		Method: method,
		Path:   path,
		Status: status,
		Body:   body,
	}
	// UseNumber keeps ids as json.Number so large int64 ids survive
	// extraction without a float64 round trip.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err == nil {
		r.doc = doc
		r.decoded = true
	}
	return r
}

// Success reports whether the status code is 2xx.
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

// JSON returns the decoded JSON document and whether the body was valid JSON.
func (r *Response) JSON() (map[string]any, bool) {
	return r.doc, r.decoded
}

// Field walks the JSON document along the given key path and returns the
// value found there.
func (r *Response) Field(path ...string) (any, bool) {
	if !r.decoded || len(path) == 0 {
		return nil, false
	}
	var cur any = r.doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ExtractID pulls an integer id from the JSON document at the given key
// path (e.g. "tournament", "id"). Creation responses must expose the new
// resource id this way; a missing or non-numeric value is an error.
func (r *Response) ExtractID(path ...string) (int64, error) {
	v, ok := r.Field(path...)
	if !ok {
		return 0, probeErrors.New(probeErrors.CategoryFixture,
			fmt.Sprintf("response has no field at %q", joinPath(path)))
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, probeErrors.New(probeErrors.CategoryFixture,
			fmt.Sprintf("field %q is not a number (got %T)", joinPath(path), v))
	}
	id, err := n.Int64()
	if err != nil {
		return 0, probeErrors.Wrap(probeErrors.CategoryFixture,
			fmt.Sprintf("field %q is not an integer", joinPath(path)), err)
	}
	return id, nil
}

// StringField returns the string value at the given key path, if present.
func (r *Response) StringField(path ...string) (string, bool) {
	v, ok := r.Field(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Pretty returns the body indented for display when it is JSON, or the raw
// text otherwise. Empty bodies render as "(empty body)".
func (r *Response) Pretty() string {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return "(empty body)"
	}
	if r.decoded {
		out, err := json.MarshalIndent(r.doc, "", "  ")
		if err == nil {
			return string(out)
		}
	}
	return string(r.Body)
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
