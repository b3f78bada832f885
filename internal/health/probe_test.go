package health

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	open, msg := checkTCP(context.Background(), "127.0.0.1", port)
	assert.True(t, open)
	assert.Contains(t, msg, "open")

	ln.Close()
	open, msg = checkTCP(context.Background(), "127.0.0.1", port)
	assert.False(t, open)
	assert.Contains(t, msg, "closed")
}

func TestCheckUDP(t *testing.T) {
	// A local UDP send produces no negative signal; the caller is
	// responsible for the caveat.
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	open, msg := checkUDP(context.Background(), "127.0.0.1", port)
	assert.True(t, open)
	assert.Contains(t, msg, "no negative signal")
}
