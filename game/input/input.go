// Package input turns keystrokes into engine directions.
package input

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

const ctrlC = 0x03

var keymap = map[byte]engine.Direction{
	'w': engine.Up(),
	'a': engine.Left(),
	's': engine.Down(),
	'd': engine.Right(),
}

// Decode maps a WASD key to a direction. Any other key reports false and
// must not reach the engine.
func Decode(b byte) (engine.Direction, bool) {
	d, ok := keymap[b]
	return d, ok
}

// IsQuit reports whether b ends an interactive session
func IsQuit(b byte) bool {
	return b == 'q' || b == ctrlC
}

// KeyReader reads one key at a time. When the source is a terminal it is put
// in raw mode so keys arrive without Enter; Close restores it.
type KeyReader struct {
	r     *bufio.Reader
	fd    int
	state *term.State
}

// NewKeyReader wraps in. Non-terminal sources (pipes, files, tests) are read
// as-is.
func NewKeyReader(in io.Reader) (*KeyReader, error) {
	kr := &KeyReader{r: bufio.NewReader(in), fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return nil, err
		}
		kr.fd = int(f.Fd())
		kr.state = state
	}
	return kr, nil
}

// Raw reports whether the reader switched a terminal to raw mode
func (kr *KeyReader) Raw() bool {
	return kr.state != nil
}

// ReadKey blocks until the next byte arrives. Line endings are skipped so
// piped input like "a\nd\n" behaves like typed keys.
func (kr *KeyReader) ReadKey() (byte, error) {
	for {
		b, err := kr.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == '\n' || b == '\r' {
			continue
		}
		return b, nil
	}
}

// Close restores the terminal state, if it was changed
func (kr *KeyReader) Close() error {
	if kr.state == nil {
		return nil
	}
	err := term.Restore(kr.fd, kr.state)
	kr.state = nil
	return err
}
