package config

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/netip"
)

// AddressKind tells which shape an Address holds.
type AddressKind int

const (
	AddressTCP AddressKind = iota
	AddressUnix
)

// Address is either an IP address and port or, on unix platforms, a socket
// path.  The TOML form carries no tag: `["127.0.0.1", 27631]` is a TCP
// address and a bare string is a socket path.
type Address struct {
	kind AddressKind
	ip   netip.Addr
	port uint16
	path string
}

// TCPAddress returns a network endpoint.
func TCPAddress(ip netip.Addr, port uint16) Address {
	return Address{kind: AddressTCP, ip: ip, port: port}
}

// UnixAddress returns a local socket endpoint.
func UnixAddress(path string) Address {
	return Address{kind: AddressUnix, path: path}
}

func (a Address) Kind() AddressKind { return a.kind }
func (a Address) IP() netip.Addr    { return a.ip }
func (a Address) Port() uint16      { return a.port }
func (a Address) Path() string      { return a.path }

// AddrPort is only meaningful for AddressTCP.
func (a Address) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.ip, a.port)
}

// Network returns the network name for the net package.
func (a Address) Network() string {
	if a.kind == AddressUnix {
		return "unix"
	}
	return "tcp"
}

func (a Address) String() string {
	if a.kind == AddressUnix {
		return a.path
	}
	return a.AddrPort().String()
}

// Listen opens a listener on the address.
func (a Address) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, a.Network(), a.String())
}

// Dial connects to the address.
func (a Address) Dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, a.Network(), a.String())
}

// addressExpectation describes the accepted shapes in decode errors.
var addressExpectation = func() string {
	if unixSocketsSupported {
		return "[ip, port] or a socket path"
	}
	return "[ip, port]"
}()

// UnmarshalTOML tries the network shape first and the socket path second.
func (a *Address) UnmarshalTOML(data any) error {
	if addr, ok := parseTCPShape(data); ok {
		*a = addr
		return nil
	}
	if addr, ok := parseUnixShape(data); ok {
		*a = addr
		return nil
	}
	return fmt.Errorf("invalid type: %s, expected %s", describe(data), addressExpectation)
}

// MarshalTOML writes the shape the address holds.
func (a Address) MarshalTOML() ([]byte, error) {
	if a.kind == AddressUnix {
		return []byte(quote(a.path)), nil
	}
	return []byte(fmt.Sprintf("[%s, %d]", quote(a.ip.String()), a.port)), nil
}

func parseTCPShape(data any) (Address, bool) {
	pair, ok := data.([]any)
	if !ok || len(pair) != 2 {
		return Address{}, false
	}
	host, ok := pair[0].(string)
	if !ok {
		return Address{}, false
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || ip.Zone() != "" {
		return Address{}, false
	}
	port, ok := pair[1].(int64)
	if !ok || port < 0 || port > math.MaxUint16 {
		return Address{}, false
	}
	return TCPAddress(ip, uint16(port)), true
}
