//go:build !unix

package ssobrowser

import (
	"bufio"
	"os"
)

// readRedirectedURLLineNoncanonical has no non-canonical-mode equivalent
// outside unix; it falls back to a plain buffered line read (documented
// limitation, see DESIGN.md).
func readRedirectedURLLineNoncanonical() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return trimNewline(line), nil
}
