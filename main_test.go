package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServe_ReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	server := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}

	err = serve(context.Background(), server, time.Second, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
}

func TestServe_CancelledContextIsCleanExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	assert.NoError(t, serve(ctx, server, time.Second, zap.NewNop()))
}
