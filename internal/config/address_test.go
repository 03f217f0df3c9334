package config

import (
	"context"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressDoc struct {
	Addr Address `toml:"addr"`
}

func decodeAddress(t *testing.T, value string) (Address, error) {
	t.Helper()
	var doc addressDoc
	_, err := toml.Decode("addr = "+value+"\n", &doc)
	return doc.Addr, err
}

func TestAddressDecodeTCP(t *testing.T) {
	tests := []struct {
		value string
		want  Address
	}{
		{`["127.0.0.1", 27631]`, TCPAddress(netip.MustParseAddr("127.0.0.1"), 27631)},
		{`["0.0.0.0", 0]`, TCPAddress(netip.IPv4Unspecified(), 0)},
		{`["::1", 65535]`, TCPAddress(netip.IPv6Loopback(), 65535)},
		{`["2001:db8::7", 80]`, TCPAddress(netip.MustParseAddr("2001:db8::7"), 80)},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := decodeAddress(t, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, AddressTCP, got.Kind())
			assert.Equal(t, "tcp", got.Network())
		})
	}
}

func TestAddressDecodeRejectsBadTCP(t *testing.T) {
	for _, value := range []string{
		`["127.0.0.1", 65536]`,
		`["127.0.0.1", -1]`,
		`["localhost", 80]`,
		`["fe80::1%eth0", 80]`,
		`["127.0.0.1"]`,
		`["127.0.0.1", 80, 1]`,
		`["127.0.0.1", "80"]`,
		`[80, "127.0.0.1"]`,
		`{ ip = "127.0.0.1", port = 80 }`,
		`27631`,
		`true`,
	} {
		t.Run(value, func(t *testing.T) {
			_, err := decodeAddress(t, value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), addressExpectation)
		})
	}
}

func TestAddressDecodeErrorNamesShapes(t *testing.T) {
	_, err := decodeAddress(t, `false`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[ip, port]")
	if unixSocketsSupported {
		assert.Contains(t, err.Error(), "or a socket path")
	} else {
		assert.NotContains(t, err.Error(), "socket path")
	}
}

func TestAddressEncodeTCP(t *testing.T) {
	data, err := TCPAddress(netip.MustParseAddr("::1"), 4000).MarshalTOML()
	require.NoError(t, err)
	assert.Equal(t, `["::1", 4000]`, string(data))

	got, err := decodeAddress(t, string(data))
	require.NoError(t, err)
	assert.Equal(t, TCPAddress(netip.IPv6Loopback(), 4000), got)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "127.0.0.1:27631", TCPAddress(netip.MustParseAddr("127.0.0.1"), 27631).String())
	assert.Equal(t, "[::1]:27631", TCPAddress(netip.IPv6Loopback(), 27631).String())
	assert.Equal(t, "/run/ra-mux.sock", UnixAddress("/run/ra-mux.sock").String())
	assert.Equal(t, "unix", UnixAddress("/run/ra-mux.sock").Network())
}

func TestAddressListenDialTCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := TCPAddress(netip.MustParseAddr("127.0.0.1"), 0).Listen(ctx)
	require.NoError(t, err)
	defer ln.Close()

	bound := netip.MustParseAddrPort(ln.Addr().String())
	addr := TCPAddress(bound.Addr(), bound.Port())

	accepted := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- err.Error()
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		accepted <- string(data)
	}()

	conn, err := addr.Dial(ctx)
	require.NoError(t, err)
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	assert.Equal(t, "ping", <-accepted)
	require.NoError(t, conn.Close())
}

func TestTimeoutEncode(t *testing.T) {
	data, err := NoTimeout().MarshalTOML()
	require.NoError(t, err)
	assert.Equal(t, "false", string(data))

	data, err = TimeoutSeconds(90).MarshalTOML()
	require.NoError(t, err)
	assert.Equal(t, "90", string(data))

	d, ok := TimeoutSeconds(90).Duration()
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)
	assert.Equal(t, 10*time.Second, Interval(10).Duration())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, quote("plain"))
	assert.Equal(t, `"a\"b\\c\n\u001F"`, quote("a\"b\\c\n\x1f"))
	assert.Equal(t, `"ünï"`, quote("ünï"))
}
