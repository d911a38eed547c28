package engine

import "fmt"

// Board is a fixed-size grid of cell flags stored row-major.
type Board struct {
	w, h  int
	cells []Flag
}

// NewBoard creates an empty board. Dimensions never change afterwards.
func NewBoard(w, h int) *Board {
	return &Board{w: w, h: h, cells: make([]Flag, w*h)}
}

func (b *Board) Width() int  { return b.w }
func (b *Board) Height() int { return b.h }

// InBounds checks if the coordinate lies on the board
func (b *Board) InBounds(c Coordinate) bool {
	return c.IsValid(b.w, b.h)
}

func (b *Board) idx(c Coordinate) int {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("engine: coordinate %s outside %dx%d board", c, b.w, b.h))
	}
	return c.Y*b.w + c.X
}

// At returns the flags of an in-bounds cell. It panics on out-of-bounds input.
func (b *Board) At(c Coordinate) Flag {
	return b.cells[b.idx(c)]
}

// Set sets flags on a cell
func (b *Board) Set(c Coordinate, f Flag) {
	i := b.idx(c)
	b.cells[i] = b.cells[i].With(f)
}

// Clear clears flags on a cell
func (b *Board) Clear(c Coordinate, f Flag) {
	i := b.idx(c)
	b.cells[i] = b.cells[i].Without(f)
}

// Count returns how many cells have every bit of f set
func (b *Board) Count(f Flag) int {
	n := 0
	for _, cell := range b.cells {
		if cell.Has(f) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	cells := make([]Flag, len(b.cells))
	copy(cells, b.cells)
	return &Board{w: b.w, h: b.h, cells: cells}
}

// Rows encodes the board as layout strings
func (b *Board) Rows() []string {
	rows := make([]string, b.h)
	buf := make([]byte, b.w)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			buf[x] = EncodeCell(b.cells[y*b.w+x])
		}
		rows[y] = string(buf)
	}
	return rows
}
