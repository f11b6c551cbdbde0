package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseDocumentsTheWireEnvelope(t *testing.T) {
	sent, err := json.Marshal(NewErrorResponseWithRequestID("DOCUMENT_LOCKED", "Issued documents cannot be edited", "req-7"))
	require.NoError(t, err)

	var documented ErrorResponse
	require.NoError(t, json.Unmarshal(sent, &documented))
	assert.False(t, documented.Success)
	require.NotNil(t, documented.Error)
	assert.Equal(t, "DOCUMENT_LOCKED", documented.Error.Code)
	assert.Equal(t, "req-7", documented.Error.RequestID)

	roundTrip, err := json.Marshal(documented)
	require.NoError(t, err)
	assert.JSONEq(t, string(sent), string(roundTrip))
}

func TestAPIResponseDocumentsPagedLists(t *testing.T) {
	type customer struct {
		Name string `json:"name"`
	}
	sent, err := json.Marshal(NewSuccessResponseWithMeta([]customer{{Name: "Acme"}}, 41, 3, 20))
	require.NoError(t, err)

	var documented APIResponse[[]customer]
	require.NoError(t, json.Unmarshal(sent, &documented))
	assert.True(t, documented.Success)
	require.Len(t, documented.Data, 1)
	assert.Equal(t, "Acme", documented.Data[0].Name)
	require.NotNil(t, documented.Meta)
	assert.Equal(t, 3, documented.Meta.TotalPages)
}
