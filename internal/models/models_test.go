package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, StringList{"x", "y"}, l)

	require.NoError(t, l.Scan(`["z"]`))
	assert.Equal(t, StringList{"z"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan([]byte("not json")))
}

func TestProductJSONShape(t *testing.T) {
	video := "https://video.example.com"
	product := Product{
		Name:     "Kit",
		VideoURL: &video,
		Status:   ProductActive,
	}

	data, err := json.Marshal(product)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	// The storefront depends on camelCase keys.
	assert.Contains(t, decoded, "createdAt")
	assert.Contains(t, decoded, "videoUrl")
	assert.NotContains(t, decoded, "DeletedAt")
	assert.NotContains(t, decoded, "downloadUrl")
	assert.Equal(t, "ACTIVE", decoded["status"])
}

func TestPurchaseJSONShape(t *testing.T) {
	purchase := Purchase{
		TransactionID: "TXN-1",
		PaymentStatus: PaymentPending,
	}

	data, err := json.Marshal(purchase)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "TXN-1", decoded["transactionId"])
	assert.Equal(t, "PENDING", decoded["paymentStatus"])
	assert.NotContains(t, decoded, "lastDownload")
}
