package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// confirm asks a yes/no question and reads one line of input.
// Anything but "y" or "yes" is a no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	sc := newLineScanner(in)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
