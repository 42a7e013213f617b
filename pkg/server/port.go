package server

import (
	"fmt"
	"net"
	"strconv"
)

// DefaultPortAttempts is how many ports FindAvailablePort tries.
const DefaultPortAttempts = 100

// FindAvailablePort returns the first port from start upward that can be
// bound on host, trying at most attempts ports.
func FindAvailablePort(host string, start, attempts int) (int, error) {
	if attempts <= 0 {
		attempts = DefaultPortAttempts
	}
	for port := start; port < start+attempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in %d-%d on %s", start, start+attempts-1, host)
}
