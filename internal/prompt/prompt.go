// Package prompt implements the console confirmations used by the setup
// commands. The accepted alphabet is exactly Y and N; anything else poses
// the question again.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer poses a yes/no question and blocks until the user answers.
type Confirmer func(question string) (bool, error)

// New returns a Confirmer reading answers from in and writing questions to
// out. The loop on invalid input is unbounded: only Y, N, or an input error
// ends it.
func New(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)
	return func(question string) (bool, error) {
		for {
			fmt.Fprintf(out, "%s (Y/N): ", question)

			line, err := reader.ReadString('\n')
			switch strings.ToUpper(strings.TrimSpace(line)) {
			case "Y":
				return true, nil
			case "N":
				return false, nil
			}
			if err != nil {
				return false, fmt.Errorf("reading answer: %w", err)
			}
		}
	}
}

// Stdin returns the interactive Confirmer. Questions go to stderr so stdout
// stays clean for machine-readable command output.
func Stdin() Confirmer {
	return New(os.Stdin, os.Stderr)
}
