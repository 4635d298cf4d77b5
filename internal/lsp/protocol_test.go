package lsp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestFraming_MultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)

	require.NoError(t, writeFrame(&buf, msg1))
	require.NoError(t, writeFrame(&buf, msg2))

	r := bufio.NewReader(&buf)
	got1, err := readFrame(r)
	require.NoError(t, err)
	got2, err := readFrame(r)
	require.NoError(t, err)

	assert.Equal(t, string(msg1), string(got1))
	assert.Equal(t, string(msg2), string(got2))

	_, err = readFrame(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"result":null}`

	t.Run("extra headers", func(t *testing.T) {
		input := fmt.Sprintf("Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: %d\r\n\r\n%s", len(body), body)
		got, err := readFrame(bufio.NewReader(strings.NewReader(input)))
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})

	t.Run("missing content length", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(strings.NewReader("Content-Type: x\r\n\r\n")))
		assert.ErrorIs(t, err, errMalformed)
	})

	t.Run("invalid content length", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(strings.NewReader("Content-Length: abc\r\n\r\n")))
		assert.ErrorIs(t, err, errMalformed)
	})

	t.Run("zero content length", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(strings.NewReader("Content-Length: 0\r\n\r\n")))
		assert.ErrorIs(t, err, errMalformed)
	})

	t.Run("truncated body", func(t *testing.T) {
		input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body)+10, body)
		_, err := readFrame(bufio.NewReader(strings.NewReader(input)))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated headers", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(strings.NewReader("Content-Length: 12\r\n")))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(strings.NewReader("")))
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("resyncs after skipped body", func(t *testing.T) {
		// тело кадра без длины склеивается со следующим заголовком
		input := "Content-Length: nope\r\n\r\n" + `{"broken":true}` + frame(body)
		r := bufio.NewReader(strings.NewReader(input))

		_, err := readFrame(r)
		require.ErrorIs(t, err, errMalformed)

		got, err := readFrame(r)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})
}

func TestMessageKinds(t *testing.T) {
	tests := []struct {
		name     string
		msg      message
		request  bool
		response bool
	}{
		{"request", message{ID: []byte("3"), Method: "workspace/configuration"}, true, false},
		{"notification", message{Method: "textDocument/publishDiagnostics"}, false, false},
		{"response", message{ID: []byte(`"3"`)}, false, true},
		{"null id notification", message{ID: []byte("null"), Method: "x"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.request, tt.msg.isRequest())
			assert.Equal(t, tt.response, tt.msg.isResponse())
		})
	}

	m := message{ID: []byte(`"7"`)}
	assert.True(t, m.idEquals(7))
	assert.False(t, m.idEquals(8))
}
