package master

import "fmt"

// errStatus turns a non-"ok" RPC status/message pair into a Go error, used
// wherever the Master calls out to a chunk server and must surface a
// failure up its own call chain.
func errStatus(status, message string) error {
	if message == "" {
		return fmt.Errorf("remote status %s", status)
	}
	return fmt.Errorf("remote status %s: %s", status, message)
}
