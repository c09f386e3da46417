package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONScanAcceptsBytesAndStrings(t *testing.T) {
	for _, value := range []interface{}{
		[]byte(`{"heads_found": 2}`),
		`{"heads_found": 2}`,
	} {
		var j JSON
		require.NoError(t, j.Scan(value))
		assert.Equal(t, float64(2), j["heads_found"])
	}
}

func TestJSONScanNilAndUnsupported(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))
}
