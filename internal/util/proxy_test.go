package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc_SchemeSpecific(t *testing.T) {
	proxy := NewProxyFunc("http://plain.proxy:3128", "http://tls.proxy:3129", "")

	req, err := http.NewRequest(http.MethodGet, "https://docs.google.com/spreadsheets/d/x/export?format=csv", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "tls.proxy:3129", u.Host)

	req, err = http.NewRequest(http.MethodGet, "http://sheets.example.com/table.csv", nil)
	require.NoError(t, err)
	u, err = proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "plain.proxy:3128", u.Host)
}

func TestNewProxyFunc_NoProxyBypasses(t *testing.T) {
	proxy := NewProxyFunc("http://plain.proxy:3128", "", "internal.example.com")

	req, err := http.NewRequest(http.MethodGet, "http://internal.example.com/escopos.csv", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}
