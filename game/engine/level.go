package engine

import "fmt"

const (
	MinLevelSize = 1
	MaxLevelSize = 50
	MaxHistory   = 1000
)

// Level is the initial layout of a board, loaded from JSON or YAML
type Level struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      []string `json:"layout" yaml:"layout"`
}

// DefaultLevel returns the built-in 6x3 level with two objects below two goals
func DefaultLevel() *Level {
	return &Level{
		Name:        "classic",
		Description: "Push both crates up onto the two goals",
		Layout: []string{
			" .. p ",
			" oo   ",
			"      ",
		},
	}
}

// ValidateLevel checks a level for a usable layout
func ValidateLevel(level *Level) error {
	if level == nil {
		return fmt.Errorf("level validation: level is nil")
	}
	if level.Name == "" {
		return fmt.Errorf("level validation: name is required")
	}
	if _, _, err := ParseLayout(level.Layout); err != nil {
		return fmt.Errorf("level validation: %w", err)
	}
	return nil
}

// ParseLayout builds a board from layout rows and returns it with the actor position
func ParseLayout(layout []string) (*Board, Coordinate, error) {
	h := len(layout)
	if h < MinLevelSize || h > MaxLevelSize {
		return nil, Coordinate{}, fmt.Errorf("%w: must have between %d and %d rows, got %d",
			ErrInvalidLayout, MinLevelSize, MaxLevelSize, h)
	}
	w := len(layout[0])
	if w < MinLevelSize || w > MaxLevelSize {
		return nil, Coordinate{}, fmt.Errorf("%w: rows must be between %d and %d characters wide, got %d",
			ErrInvalidLayout, MinLevelSize, MaxLevelSize, w)
	}

	board := NewBoard(w, h)
	var actor Coordinate
	actors := 0
	for y, row := range layout {
		if len(row) != w {
			return nil, Coordinate{}, fmt.Errorf("%w: row %d must have %d characters, got %d",
				ErrInvalidLayout, y+1, w, len(row))
		}
		for x := 0; x < w; x++ {
			f, ok := DecodeCell(row[x])
			if !ok {
				return nil, Coordinate{}, fmt.Errorf("%w: invalid character '%c' at row %d, col %d",
					ErrInvalidLayout, row[x], y+1, x+1)
			}
			c := Coordinate{X: x, Y: y}
			if f.Has(Actor) {
				actors++
				actor = c
			}
			board.Set(c, f)
		}
	}
	if actors != 1 {
		return nil, Coordinate{}, fmt.Errorf("%w: must contain exactly one actor, got %d", ErrInvalidLayout, actors)
	}
	return board, actor, nil
}
