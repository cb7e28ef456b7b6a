package util

import (
	"fmt"
	"net"
	"strconv"
)

// ParseAddress validates that host is a numeric IPv4/IPv6 literal and
// that port is in range, and returns the joined "host:port" string.
// Transactions never resolve hostnames; a non-literal host is an input
// error before any socket is opened.
func ParseAddress(host string, port int) (string, error) {
	if net.ParseIP(host) == nil {
		return "", fmt.Errorf("cannot parse %q as an IP address", host)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("port %d out of range 1-65535", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
