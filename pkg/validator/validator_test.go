package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjustRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

type addRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(adjustRequest{Delta: -1}))
	assert.NoError(t, Validate(addRequest{ProductID: 3}))
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(adjustRequest{Delta: 0})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, map[string]string{"delta": "must not be 0"}, valErr.Fields())
	assert.Equal(t, "field 'delta' must not be 0", valErr.Error())
}

func TestValidate_Required(t *testing.T) {
	err := Validate(addRequest{})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["product_id"])
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":7}`))
	var req addRequest
	require.NoError(t, DecodeAndValidate(r, &req))
	assert.Equal(t, int64(7), req.ProductID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
