//go:build unix

package ssobrowser

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setReuseAddr is installed as a net.ListenConfig.Control hook so a
// just-released port can be rebound immediately.
func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
