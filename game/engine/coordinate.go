package engine

import (
	"fmt"
	"strings"
)

// Coordinate represents a cell position on the board
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y}
}

// Scale returns the coordinate multiplied by n
func (c Coordinate) Scale(n int) Coordinate {
	return Coordinate{X: c.X * n, Y: c.Y * n}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is one of Up, Down, Left or Right. Other packages cannot build a
// Direction outside that set; the zero value is Up.
type Direction struct {
	idx uint8
}

// Up, Down, Left and Right return the four directions. They are functions
// so no importer can rebind them.
func Up() Direction    { return Direction{idx: 0} }
func Down() Direction  { return Direction{idx: 1} }
func Left() Direction  { return Direction{idx: 2} }
func Right() Direction { return Direction{idx: 3} }

var directionOffsets = [...]Coordinate{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

var directionNames = [...]string{"up", "down", "left", "right"}

// Directions returns all four directions in a stable order
func Directions() []Direction {
	return []Direction{Up(), Down(), Left(), Right()}
}

// Offset returns the unit offset for the direction
func (d Direction) Offset() Coordinate {
	return directionOffsets[d.idx]
}

// String returns the lowercase name of the direction
func (d Direction) String() string {
	return directionNames[d.idx]
}

// ParseDirection converts "up", "down", "left" or "right" (any case) to a Direction
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction{idx: uint8(i)}, nil
		}
	}
	return Direction{}, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
