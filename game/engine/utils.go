package engine

// DirectionNames converts directions to their lowercase names
func DirectionNames(dirs []Direction) []string {
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, d.String())
	}
	return names
}

// FindCells returns the coordinates of every cell with all bits of f set, in
// row-major order
func FindCells(e Engine, f Flag) []Coordinate {
	var found []Coordinate
	for y := 0; y < e.Height(); y++ {
		for x := 0; x < e.Width(); x++ {
			c := Coordinate{X: x, Y: y}
			if e.Cell(c).Has(f) {
				found = append(found, c)
			}
		}
	}
	return found
}
