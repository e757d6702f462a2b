package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineDecoder_SplitAcrossReads(t *testing.T) {
	var d LineDecoder

	lines := d.Feed([]byte("data: {\"a\":"))
	assert.Empty(t, lines, "partial line must be buffered")

	lines = d.Feed([]byte("1}\ndata: [DONE]\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "data: {\"a\":1}", lines[0])
	assert.Equal(t, "data: [DONE]", lines[1])
	assert.Empty(t, d.Rest())
}

func TestLineDecoder_CRLF(t *testing.T) {
	var d LineDecoder

	lines := d.Feed([]byte("data: x\r\ndata: y\r\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "data: x", lines[0])
	assert.Equal(t, "data: y", lines[1])
}

func TestLineDecoder_Rest(t *testing.T) {
	var d LineDecoder

	d.Feed([]byte("data: complete\ndata: tail-without-newline"))
	assert.Equal(t, "data: tail-without-newline", d.Rest())
}

func TestLineDecoder_ManySmallChunks(t *testing.T) {
	var d LineDecoder
	input := "data: hello\n"

	var got []string
	for i := 0; i < len(input); i++ {
		got = append(got, d.Feed([]byte{input[i]})...)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "data: hello", got[0])
}

func TestData(t *testing.T) {
	tests := []struct {
		line    string
		payload string
		ok      bool
	}{
		{"data: {\"x\":1}", "{\"x\":1}", true},
		{"data:{\"x\":1}", "{\"x\":1}", true},
		{"data: [DONE]", "[DONE]", true},
		{"event: message_stop", "", false},
		{": keep-alive comment", "", false},
		{"", "", false},
		{"data: payload\r", "payload", true},
	}

	for _, tt := range tests {
		payload, ok := Data(tt.line)
		assert.Equal(t, tt.ok, ok, "line %q", tt.line)
		assert.Equal(t, tt.payload, payload, "line %q", tt.line)
	}
}
