package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_ExtractID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		path    []string
		want    int64
		wantErr bool
	}{
		{
			name: "nested id",
			body: `{"tournament":{"id":42,"name":"x"}}`,
			path: []string{"tournament", "id"},
			want: 42,
		},
		{
			name: "top-level id",
			body: `{"registration_id":7}`,
			path: []string{"registration_id"},
			want: 7,
		},
		{
			name: "id beyond float64 precision",
			body: `{"registration_id":9007199254740993}`,
			path: []string{"registration_id"},
			want: 9007199254740993,
		},
		{
			name:    "fractional id",
			body:    `{"tournament":{"id":1.5}}`,
			path:    []string{"tournament", "id"},
			wantErr: true,
		},
		{
			name:    "missing field",
			body:    `{"tournament":{"name":"x"}}`,
			path:    []string{"tournament", "id"},
			wantErr: true,
		},
		{
			name:    "non-numeric field",
			body:    `{"tournament":{"id":"forty-two"}}`,
			path:    []string{"tournament", "id"},
			wantErr: true,
		},
		{
			name:    "non-JSON body",
			body:    `<html>Internal Server Error</html>`,
			path:    []string{"id"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := NewResponse("POST", "/admin/tournaments", 201, []byte(tt.body))
			id, err := resp.ExtractID(tt.path...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestResponse_JSONTolerance(t *testing.T) {
	t.Parallel()

	jsonResp := NewResponse("GET", "/x", 200, []byte(`{"ok":true}`))
	_, decoded := jsonResp.JSON()
	assert.True(t, decoded)

	textResp := NewResponse("GET", "/x", 502, []byte("Bad Gateway"))
	_, decoded = textResp.JSON()
	assert.False(t, decoded)
	assert.Equal(t, "Bad Gateway", textResp.Pretty())
}

func TestResponse_Pretty(t *testing.T) {
	t.Parallel()

	resp := NewResponse("GET", "/x", 200, []byte(`{"a":1}`))
	assert.Contains(t, resp.Pretty(), "\"a\": 1")

	empty := NewResponse("DELETE", "/x", 204, nil)
	assert.Equal(t, "(empty body)", empty.Pretty())
}

func TestResponse_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, NewResponse("GET", "/x", 200, nil).Success())
	assert.True(t, NewResponse("POST", "/x", 201, nil).Success())
	assert.False(t, NewResponse("POST", "/x", 409, nil).Success())
	assert.False(t, NewResponse("GET", "/x", 500, nil).Success())
}

func TestResponse_StringField(t *testing.T) {
	t.Parallel()

	resp := NewResponse("GET", "/x", 200, []byte(`{"status":"REGISTERED","count":3}`))

	status, ok := resp.StringField("status")
	require.True(t, ok)
	assert.Equal(t, "REGISTERED", status)

	_, ok = resp.StringField("count")
	assert.False(t, ok)

	_, ok = resp.StringField("missing")
	assert.False(t, ok)
}
