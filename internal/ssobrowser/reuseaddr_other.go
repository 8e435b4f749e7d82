//go:build !unix

package ssobrowser

import "syscall"

// setReuseAddr is a no-op outside unix; Windows sockets don't need
// SO_REUSEADDR for this listener's bind-then-release pattern.
func setReuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
