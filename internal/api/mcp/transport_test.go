package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioTransportServesLineDelimitedRequests(t *testing.T) {
	srv := NewServer(&stubService{})

	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(srv, in, &out)
	err := transport.Serve(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	for i, line := range lines {
		var resp rpcResponse
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		assert.Equal(t, "2.0", resp.JSONRPC)
		assert.Equal(t, float64(i+1), resp.ID)
		assert.Nil(t, resp.Error)
	}
}

func TestStdioTransportSkipsNotificationFrames(t *testing.T) {
	srv := NewServer(&stubService{})

	in := strings.NewReader(
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
			`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(srv, in, &out)
	require.NoError(t, transport.Serve(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1, "notification must not produce an output frame")
}

func TestStdioTransportIgnoresBlankLines(t *testing.T) {
	srv := NewServer(&stubService{})

	in := strings.NewReader("\n\n" + `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(srv, in, &out)
	require.NoError(t, transport.Serve(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestStdioTransportMalformedRequestStillResponds(t *testing.T) {
	srv := NewServer(&stubService{})

	in := strings.NewReader(`{not json` + "\n")
	var out bytes.Buffer

	transport := NewStdioTransport(srv, in, &out)
	require.NoError(t, transport.Serve(context.Background()))

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParseError, resp.Error.Code)
}

func TestStdioTransportStopsOnCancelledContext(t *testing.T) {
	srv := NewServer(&stubService{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := NewStdioTransport(srv, strings.NewReader(""), &bytes.Buffer{})
	err := transport.Serve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInternalErrorResponseRecoversRequestID(t *testing.T) {
	transport := NewStdioTransport(NewServer(&stubService{}), strings.NewReader(""), &bytes.Buffer{})

	raw := transport.internalErrorResponse([]byte(`{"jsonrpc":"2.0","id":42,"method":"x"}`), assert.AnError)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, float64(42), resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInternalError, resp.Error.Code)
}
