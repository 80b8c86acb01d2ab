package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoDocumentConversionKeepsFields(t *testing.T) {
	in := json.RawMessage(`{"id":"d1","name":"Ravi","age":30,"bloodGroup":"O-"}`)

	doc, err := jsonDocument(in)
	require.NoError(t, err)
	assert.Equal(t, "d1", doc["id"])

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	out, err := documentJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestJSONDocumentRejectsNonObjects(t *testing.T) {
	_, err := jsonDocument(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestIDOf(t *testing.T) {
	id, err := idOf(json.RawMessage(`{"id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	id, err = idOf(json.RawMessage(`{"id":42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = idOf(json.RawMessage(`{"name":"x"}`))
	assert.Error(t, err)
}
