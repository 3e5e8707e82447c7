package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
		name string
	}{
		{KindValidation, http.StatusBadRequest, "ValidationError"},
		{KindForbidden, http.StatusForbidden, "Forbidden"},
		{KindNotFound, http.StatusNotFound, "NotFound"},
		{KindInsufficientStock, http.StatusBadRequest, "InsufficientStock"},
		{KindInvalidState, http.StatusBadRequest, "InvalidState"},
		{KindInternal, http.StatusInternalServerError, "InternalError"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.kind.HTTPStatus())
			assert.Equal(t, tc.name, tc.kind.String())
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create order: %w", NotFound("product", "p1"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestInsufficientStockDetails(t *testing.T) {
	err := InsufficientStock("cola", decimal.NewFromInt(3), decimal.RequireFromString("1.5"))

	assert.Equal(t, "cola", err.Details["product_id"])
	assert.Equal(t, "3", err.Details["requested"])
	assert.Equal(t, "1.5", err.Details["available"])
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAsWrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection refused")
	e := As(cause)

	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
}
