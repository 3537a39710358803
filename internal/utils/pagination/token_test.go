package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSequenceToken(t *testing.T) {
	token := EncodeSequenceToken("req-1", 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	seq, err := DecodeSequenceToken(token, "req-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestDecodeSequenceTokenRejectsOtherRequest(t *testing.T) {
	token := EncodeSequenceToken("req-1", 3)

	_, err := DecodeSequenceToken(token, "req-2")
	assert.Error(t, err)
}

func TestDecodeSequenceTokenInvalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"wrong field count", EncodeMultiFieldToken("req-1")},
		{"non numeric sequence", EncodeMultiFieldToken("req-1", "abc")},
		{"negative sequence", EncodeMultiFieldToken("req-1", "-5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSequenceToken(tt.token, "req-1")
			assert.Error(t, err)
		})
	}
}

func TestMultiFieldTokenRoundTrip(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}
