package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code", func(t *testing.T) {
		err := New(CodeWrongMinter, "only assigned minter")
		assert.True(t, HasCode(err, CodeWrongMinter))
		assert.False(t, HasCode(err, CodeNoMinterAssigned))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("purchase: %w", New(CodeSoldOut, "sold out"))
		assert.True(t, HasCode(err, CodeSoldOut))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestIs_WalksNestedDomainErrors(t *testing.T) {
	inner := New(CodeCapacityExceeded, "no invocations left")
	outer := Wrap(inner, CodeInternal, "mint failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeCapacityExceeded))
	assert.True(t, Is(outer, CodeCapacityExceeded))
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))

	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load project")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load project: connection reset", err.Error())
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{CodeNotSuperAdmin, CategoryAuthorization},
		{CodeNotArtist, CategoryAuthorization},
		{CodeNoMinterAssigned, CategoryAssignment},
		{CodeWrongMinter, CategoryAssignment},
		{CodeMinterNotApproved, CategoryAssignment},
		{CodeStillAssigned, CategoryAssignment},
		{CodeProjectNotOpen, CategoryPolicy},
		{CodeUnsupportedCurrency, CategoryPolicy},
		{CodeRedirectNotAllowed, CategoryPolicy},
		{CodeSoldOut, CategoryCapacity},
		{CodeCapacityExceeded, CategoryCapacity},
		{CodeInsufficientPayment, CategoryPayment},
		{CodeValidation, CategoryRequest},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Category())
			assert.Equal(t, tt.want, CategoryOf(New(tt.code, "x")))
		})
	}
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(CodeNotArtist))
	assert.Equal(t, http.StatusPaymentRequired, ToHTTPStatus(CodeInsufficientPayment))
	assert.Equal(t, http.StatusGone, ToHTTPStatus(CodeSoldOut))
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(CodeNoMinterAssigned))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeStillAssigned))
	assert.Equal(t, http.StatusTooManyRequests, ToHTTPStatus(CodeRateLimited))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("mystery")))
}
