//go:build unix

package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressDecodeUnix(t *testing.T) {
	got, err := decodeAddress(t, `"/run/user/1000/ra-mux.sock"`)
	require.NoError(t, err)
	assert.Equal(t, UnixAddress("/run/user/1000/ra-mux.sock"), got)
	assert.Equal(t, AddressUnix, got.Kind())
	assert.True(t, unixSocketsSupported)
}

// A string that looks like an address is still a path: only the array shape
// is a network address.
func TestAddressDecodeUnixPrefersArrayShape(t *testing.T) {
	got, err := decodeAddress(t, `"127.0.0.1:27631"`)
	require.NoError(t, err)
	assert.Equal(t, AddressUnix, got.Kind())
	assert.Equal(t, "127.0.0.1:27631", got.Path())
}

func TestAddressEncodeUnix(t *testing.T) {
	data, err := UnixAddress(`/tmp/with "quotes".sock`).MarshalTOML()
	require.NoError(t, err)
	assert.Equal(t, `"/tmp/with \"quotes\".sock"`, string(data))

	got, err := decodeAddress(t, string(data))
	require.NoError(t, err)
	assert.Equal(t, UnixAddress(`/tmp/with "quotes".sock`), got)
}

func TestParseUnixListen(t *testing.T) {
	cfg, err := Parse([]byte("listen = \"/run/ra-mux.sock\"\nconnect = \"/run/ra-mux.sock\"\n"))
	require.NoError(t, err)
	assert.Equal(t, UnixAddress("/run/ra-mux.sock"), cfg.Listen)
	assert.Equal(t, cfg.Listen, cfg.Connect)

	data, err := cfg.TOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "listen = \"/run/ra-mux.sock\"\n")
}

func TestParseRejectsEmptySocketPath(t *testing.T) {
	err := parseErr(t, `connect = ""`)
	assert.Equal(t, "connect", err.Field)
	assert.Contains(t, err.Error(), "socket path")
}

func TestAddressListenDialUnix(t *testing.T) {
	ctx := context.Background()
	addr := UnixAddress(filepath.Join(t.TempDir(), "mux.sock"))

	ln, err := addr.Listen(ctx)
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		done <- err
	}()

	conn, err := addr.Dial(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	assert.NoError(t, <-done)
}
