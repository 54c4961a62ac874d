// Package prompt asks yes/no questions on the controlling terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Terminal is a line-based yes/no prompter.
type Terminal struct {
	in          io.Reader
	reader      *bufio.Reader
	out         io.Writer
	interactive func() bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithInput sets the reader answers are read from.
func WithInput(r io.Reader) Option {
	return func(t *Terminal) { t.in = r }
}

// WithOutput sets the writer questions are printed to.
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) { t.out = w }
}

// WithInteractive overrides terminal detection on the input.
func WithInteractive(fn func() bool) Option {
	return func(t *Terminal) { t.interactive = fn }
}

// NewTerminal creates a prompter bound to stdin/stderr.
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		in:  os.Stdin,
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.interactive == nil {
		in := t.in
		t.interactive = func() bool { return isTerminal(in) }
	}
	t.reader = bufio.NewReader(t.in)
	return t
}

// isTerminal reports whether r is a file attached to a terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether a human can answer.
func (t *Terminal) Interactive() bool {
	return t.interactive()
}

// YesNo prints header followed by a [y/N] question and reads one line.
// Only "y" and "yes" (any case) count as consent. EOF counts as no.
// When ctx ends first the pending read is abandoned and keeps the reader
// busy until a line arrives, so a Terminal should not be reused after that.
func (t *Terminal) YesNo(ctx context.Context, header string) (bool, error) {
	if _, err := fmt.Fprintf(t.out, "%s\nProceed? [y/N] ", header); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		return isYes(a.line), nil
	}
}

func isYes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
