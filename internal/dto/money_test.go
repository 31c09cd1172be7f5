package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_MarshalJSON(t *testing.T) {
	payload := struct {
		Price    Money  `json:"price"`
		Discount *Money `json:"discount"`
	}{
		Price:    NewMoney(decimal.RequireFromString("49.9")),
		Discount: NewNullMoney(decimal.NullDecimal{}),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":49.90,"discount":null}`, string(data))
	assert.Contains(t, string(data), "49.90")
}
