package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOrderRequest(t *testing.T, body string) *OrderRequest {
	t.Helper()
	var req OrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestOrderRequestSinglePair(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": 2, "quantities": 3}`)

	lines, err := req.Lines()

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, LineRequest{ListingID: 2, Quantity: 3}, lines[0])
}

func TestOrderRequestCommaSeparatedStrings(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": "1,2", "quantities": "15,1"}`)

	lines, err := req.Lines()

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, LineRequest{ListingID: 1, Quantity: 15}, lines[0])
	assert.Equal(t, LineRequest{ListingID: 2, Quantity: 1}, lines[1])
}

func TestOrderRequestArrays(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": [4, 5, 6], "quantities": [1, 2, 3]}`)

	lines, err := req.Lines()

	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, int64(6), lines[2].ListingID)
	assert.Equal(t, 3, lines[2].Quantity)
}

func TestOrderRequestLengthMismatch(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": "1,2", "quantities": "15"}`)

	_, err := req.Lines()

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderRequestEmpty(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": "", "quantities": ""}`)

	_, err := req.Lines()

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderRequestNonPositiveQuantity(t *testing.T) {
	for _, body := range []string{
		`{"listings": 1, "quantities": 0}`,
		`{"listings": 1, "quantities": -2}`,
	} {
		req := decodeOrderRequest(t, body)
		_, err := req.Lines()
		assert.ErrorIs(t, err, ErrValidation, body)
	}
}

func TestOrderRequestGarbageSequence(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": "1,x", "quantities": "1,2"}`)

	_, err := req.Lines()

	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderRequestPreservesCallerOrder(t *testing.T) {
	req := decodeOrderRequest(t, `{"listings": "3,1,2", "quantities": "7,8,9"}`)

	lines, err := req.Lines()

	require.NoError(t, err)
	ids := []int64{lines[0].ListingID, lines[1].ListingID, lines[2].ListingID}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestValidationErrorsMatchSentinel(t *testing.T) {
	err := Validationf("bad input %d", 42)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "bad input 42")
}
