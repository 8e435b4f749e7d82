//go:build unix

package ssobrowser

import (
	"bufio"
	"errors"
	"os"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// nonCanonicalModeGuard switches stdin to non-canonical mode (no line
// buffering, no echo-driven editing) for the duration of a single
// character-at-a-time read, then unconditionally restores the prior
// settings.
type nonCanonicalModeGuard struct {
	fd       int
	original unix.Termios
}

func newNonCanonicalModeGuard(fd int) (*nonCanonicalModeGuard, error) {
	term, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	original := *term
	raw := *term
	raw.Lflag &^= unix.ICANON
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, err
	}
	return &nonCanonicalModeGuard{fd: fd, original: original}, nil
}

func (g *nonCanonicalModeGuard) restore() {
	_ = unix.IoctlSetTermios(g.fd, ioctlSetTermios, &g.original)
}

// readRedirectedURLLineNoncanonical reads one line from stdin in
// non-canonical mode, honoring backspace/delete, and returns ErrNotATTY if
// stdin isn't a terminal (the caller falls back to a plain line read).
func readRedirectedURLLineNoncanonical() (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", ErrNotATTY
	}
	guard, err := newNonCanonicalModeGuard(fd)
	if err != nil {
		return "", err
	}
	defer guard.restore()

	var buf []byte
	reader := bufio.NewReaderSize(os.Stdin, 1)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		switch b {
		case '\n', '\r':
			return bytesToUTF8(buf)
		case 0x08, 0x7f:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		default:
			buf = append(buf, b)
		}
	}
	return bytesToUTF8(buf)
}

func bytesToUTF8(buf []byte) (string, error) {
	if !utf8.Valid(buf) {
		return "", errors.New("redirected URL is not valid UTF-8")
	}
	return string(buf), nil
}

func isTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	return err == nil
}
