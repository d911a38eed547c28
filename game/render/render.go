// Package render draws a board as framed text.
package render

import (
	"strings"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

// Border frames the board on every side
const Border = '#'

// View is the read-only part of an engine the renderer needs
type View interface {
	Width() int
	Height() int
	Cell(c engine.Coordinate) engine.Flag
}

// Glyph returns the character drawn for a cell
func Glyph(f engine.Flag) byte {
	return engine.EncodeCell(f)
}

// Text renders v as rows of glyphs inside a border, one line per row
func Text(v View) string {
	w, h := v.Width(), v.Height()
	edge := strings.Repeat(string(Border), w+2)

	var sb strings.Builder
	sb.Grow((w + 3) * (h + 2))
	sb.WriteString(edge)
	sb.WriteByte('\n')
	for y := 0; y < h; y++ {
		sb.WriteByte(Border)
		for x := 0; x < w; x++ {
			sb.WriteByte(Glyph(v.Cell(engine.Coordinate{X: x, Y: y})))
		}
		sb.WriteByte(Border)
		sb.WriteByte('\n')
	}
	sb.WriteString(edge)
	sb.WriteByte('\n')
	return sb.String()
}

// Lines is Text split into lines without the trailing newline, for
// transports that carry rows separately
func Lines(v View) []string {
	return strings.Split(strings.TrimSuffix(Text(v), "\n"), "\n")
}

// snapshot adapts a parsed board to View
type snapshot struct{ *engine.Board }

func (s snapshot) Cell(c engine.Coordinate) engine.Flag { return s.At(c) }

// State renders a serialized game state
func State(state *engine.GameState) (string, error) {
	board, _, err := engine.ParseLayout(state.Rows)
	if err != nil {
		return "", err
	}
	return Text(snapshot{board}), nil
}
