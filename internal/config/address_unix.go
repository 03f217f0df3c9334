//go:build unix

package config

const unixSocketsSupported = true

func parseUnixShape(data any) (Address, bool) {
	path, ok := data.(string)
	if !ok {
		return Address{}, false
	}
	return UnixAddress(path), true
}
