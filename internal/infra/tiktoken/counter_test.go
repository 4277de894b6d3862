package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_CountTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("encoding download required")
	}

	c, err := NewCounter("")
	require.NoError(t, err)

	assert.Zero(t, c.CountTokens(""))
	short := c.CountTokens("Kaciga je obavezna.")
	long := c.CountTokens("Kaciga je obavezna. Rukavice su obavezne na svim radnim mestima.")
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}

func TestCounter_UnknownEncoding(t *testing.T) {
	_, err := NewCounter("no_such_encoding")
	assert.Error(t, err)
}

func TestCounter_ZeroValue(t *testing.T) {
	var c Counter
	assert.Zero(t, c.CountTokens("tekst"))
}
