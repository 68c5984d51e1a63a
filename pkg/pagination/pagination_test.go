package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(10)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)

	assert.Equal(t, 20, DefaultParams(0).Limit)
	assert.Equal(t, 20, DefaultParams(500).Limit)
}

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	p, err := FromRequest(req, 20)

	require.NoError(t, err)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?limit=50&offset=100", nil)
	p, err := FromRequest(req, 20)

	require.NoError(t, err)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_OutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"negative limit", "limit=-1"},
		{"zero limit", "limit=0"},
		{"negative offset", "offset=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items?"+tt.query, nil)
			p, err := FromRequest(req, 20)
			require.NoError(t, err)
			assert.Equal(t, 20, p.Limit)
			assert.Equal(t, 0, p.Offset)
		})
	}
}

func TestFromRequest_LimitCapped(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?limit=100", nil)
	p, err := FromRequest(req, 20)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)

	req = httptest.NewRequest(http.MethodGet, "/items?limit=250", nil)
	p, err = FromRequest(req, 20)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestFromRequest_NotANumber(t *testing.T) {
	tests := []struct {
		name  string
		query string
		param string
		value string
	}{
		{"limit", "limit=abc", "limit", "abc"},
		{"offset", "offset=xyz", "offset", "xyz"},
		{"limit checked first", "limit=ten&offset=xyz", "limit", "ten"},
		{"float limit", "limit=2.5", "limit", "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items?"+tt.query, nil)
			_, err := FromRequest(req, 20)

			var perr *ParamError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.param, perr.Name)
			assert.Equal(t, tt.value, perr.Value)
		})
	}
}
