package httpclient

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: &url.URL{Path: "/products"}},
	}
}

func TestParseResponseError_NotFound(t *testing.T) {
	err := ParseResponseError(newResponse(http.StatusNotFound, ""), "catalog")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "/products")
}

func TestParseResponseError_Unavailable(t *testing.T) {
	err := ParseResponseError(newResponse(http.StatusServiceUnavailable, "maintenance"), "catalog")

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestParseResponseError_Other(t *testing.T) {
	err := ParseResponseError(newResponse(http.StatusTeapot, "short and stout"), "catalog")

	assert.EqualError(t, err, "catalog returned status 418: short and stout")
}

func TestParseResponseError_NilRequest(t *testing.T) {
	resp := newResponse(http.StatusNotFound, "")
	resp.Request = nil

	assert.ErrorIs(t, ParseResponseError(resp, "catalog"), apperrors.ErrNotFound)
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(http.StatusOK))
	assert.True(t, IsSuccess(http.StatusNoContent))
	assert.False(t, IsSuccess(http.StatusMultipleChoices))
	assert.False(t, IsSuccess(http.StatusInternalServerError))
}
