package constants

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResponseLen(t *testing.T) {
	ok := SearchResponse{Documents: []string{"a", "b"}, Indices: []int{1, 2}, Similarities: []float64{0.5, 0.1}}
	assert.Equal(t, 2, ok.Len())

	empty := SearchResponse{}
	assert.Equal(t, 0, empty.Len())

	short := SearchResponse{Documents: []string{"a"}, Indices: []int{1, 2}, Similarities: []float64{0.5}}
	assert.Equal(t, -1, short.Len())
}

func TestSearchResponseWireKeys(t *testing.T) {
	var resp SearchResponse
	raw := `{"documents": ["doc a"], "indices": [3], "similarities": [0.87]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	assert.Equal(t, []string{"doc a"}, resp.Documents)
	assert.Equal(t, []int{3}, resp.Indices)
	assert.Equal(t, []float64{0.87}, resp.Similarities)
}
